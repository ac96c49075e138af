package invite

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
	"github.com/pablodelgado26/family-organizer/internal/model"
	"github.com/pablodelgado26/family-organizer/internal/store"
)

// Service owns code generation, rotation and joins. Mutating operations on
// the same group are serialized so concurrent joins and regenerations see a
// consistent code state.
type Service struct {
	groups *store.GroupStore
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewService(groups *store.GroupStore, logger *slog.Logger) *Service {
	return &Service{
		groups: groups,
		logger: logger.With("component", "invite"),
		now:    time.Now,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// TempInvite is the result of generating a temporary code.
type TempInvite struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Service) lockFor(groupID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[groupID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[groupID] = l
	}
	return l
}

// requireAdmin returns nil only when the user is an admin of the group.
func (s *Service) requireAdmin(groupID, userID int64) error {
	m, err := s.groups.GetMember(groupID, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "check membership")
	}
	if m == nil {
		return apperr.Forbidden("not a member of this group")
	}
	if m.Role != model.RoleAdmin {
		return apperr.Forbidden("only group admins can manage invite codes")
	}
	return nil
}

// GenerateTempCode issues a fresh temporary code for the group, replacing
// whatever temporary code was active before. Only admins may call it.
func (s *Service) GenerateTempCode(groupID, userID int64) (*TempInvite, error) {
	l := s.lockFor(groupID)
	l.Lock()
	defer l.Unlock()

	g, err := s.groups.GetByID(groupID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "load group")
	}
	if g == nil {
		return nil, apperr.NotFound("group not found")
	}
	if err := s.requireAdmin(groupID, userID); err != nil {
		return nil, err
	}

	code, err := NewTempCode()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "generate temp code")
	}
	expiresAt := s.now().UTC().Add(TempCodeTTL)

	if err := s.groups.ReplaceTempCode(groupID, code, expiresAt); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "store temp code")
	}

	s.logger.Info("temporary invite code generated", "group_id", groupID, "expires_at", expiresAt)
	return &TempInvite{Code: code, ExpiresAt: expiresAt}, nil
}

// RotatePermanentCode replaces the group's permanent invite code with a new
// one. The old code stops working immediately. Only admins may call it.
func (s *Service) RotatePermanentCode(groupID, userID int64) (string, error) {
	l := s.lockFor(groupID)
	l.Lock()
	defer l.Unlock()

	g, err := s.groups.GetByID(groupID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, err, "load group")
	}
	if g == nil {
		return "", apperr.NotFound("group not found")
	}
	if err := s.requireAdmin(groupID, userID); err != nil {
		return "", err
	}

	code, err := s.UniquePermanentCode()
	if err != nil {
		return "", err
	}
	if err := s.groups.ReplacePermanentCode(groupID, code); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, err, "store permanent code")
	}

	s.logger.Info("permanent invite code rotated", "group_id", groupID)
	return code, nil
}

// UniquePermanentCode generates a permanent code not currently held by any
// group. Collisions in a 31^9 space are vanishingly rare so a handful of
// attempts is plenty.
func (s *Service) UniquePermanentCode() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := NewPermanentCode()
		if err != nil {
			return "", apperr.Wrap(apperr.KindInternal, err, "generate permanent code")
		}
		existing, err := s.groups.GetByInviteCode(code)
		if err != nil {
			return "", apperr.Wrap(apperr.KindInternal, err, "check code uniqueness")
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", apperr.New(apperr.KindInternal, "could not generate a unique invite code")
}

// JoinWithTemporaryCode adds the user to the group whose current temporary
// code matches. The code stays usable by other users until it expires or is
// regenerated.
func (s *Service) JoinWithTemporaryCode(userID int64, code string) (*model.FamilyGroup, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.InvalidArgument("invite code is required")
	}

	g, err := s.groups.GetByTempCode(code)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "look up temp code")
	}
	if g == nil {
		return nil, apperr.NotFound("invalid invite code")
	}

	l := s.lockFor(g.ID)
	l.Lock()
	defer l.Unlock()

	// Re-read under the lock; a concurrent regenerate may have replaced
	// the code between lookup and lock acquisition.
	g, err = s.groups.GetByID(g.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "load group")
	}
	if g == nil || g.TempCode == nil || !strings.EqualFold(*g.TempCode, code) {
		return nil, apperr.NotFound("invalid invite code")
	}
	if g.TempExpiresAt == nil || !s.now().UTC().Before(g.TempExpiresAt.UTC()) {
		return nil, apperr.Expired("invite code has expired")
	}

	return s.join(g, userID)
}

// JoinWithPermanentCode adds the user to the group whose permanent invite
// code matches. Permanent codes never expire.
func (s *Service) JoinWithPermanentCode(userID int64, code string) (*model.FamilyGroup, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.InvalidArgument("invite code is required")
	}

	g, err := s.groups.GetByInviteCode(code)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "look up invite code")
	}
	if g == nil {
		return nil, apperr.NotFound("invalid invite code")
	}

	l := s.lockFor(g.ID)
	l.Lock()
	defer l.Unlock()

	return s.join(g, userID)
}

func (s *Service) join(g *model.FamilyGroup, userID int64) (*model.FamilyGroup, error) {
	existing, err := s.groups.GetMember(g.ID, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "check membership")
	}
	if existing != nil {
		return nil, apperr.Conflict("already a member of %s", g.Name)
	}

	if _, err := s.groups.AddMember(g.ID, userID, model.RoleMember); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "add member")
	}

	s.logger.Info("user joined group", "group_id", g.ID, "user_id", userID)
	return g, nil
}
