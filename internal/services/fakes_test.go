package services

import (
	"context"
	"sync"

	"github.com/rescuenet/callout_service/internal/clients/firebase"
	"github.com/rescuenet/callout_service/internal/domain"
	"gorm.io/gorm"
)

// In-memory fakes over the repository and client interfaces. Kept minimal:
// they only honour what the services under test actually call.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[uint]*domain.User{}}
}

func (r *fakeUserRepo) add(user domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	} else if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	u := user
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) CreateUser(user *domain.User) (*domain.User, error) {
	return r.add(*user), nil
}

func (r *fakeUserRepo) FindUserById(userID uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindUserByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindUserByPhone(phone string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindUserByFirebaseUID(uid string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.FirebaseUID == uid {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) SaveUser(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) DeleteUser(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) ListEnabledExcept(userID uint) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.ID != userID && !u.Disabled {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeEventRepo struct {
	mu             sync.Mutex
	nextEventID    uint
	nextRowID      uint
	events         map[uint]*domain.Event
	participations map[uint][]*domain.EventUser // keyed by event id
	findErr        error                        // returned by the next FindEventById, then cleared
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		nextEventID:    1,
		nextRowID:      1,
		events:         map[uint]*domain.Event{},
		participations: map[uint][]*domain.EventUser{},
	}
}

func (r *fakeEventRepo) CreateWithParticipants(event *domain.Event, userIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = r.nextEventID
	r.nextEventID++
	copied := *event
	r.events[event.ID] = &copied
	for _, id := range userIDs {
		r.participations[event.ID] = append(r.participations[event.ID], &domain.EventUser{
			ID:      r.nextRowID,
			EventID: event.ID,
			UserID:  id,
			Status:  domain.ParticipationPending,
		})
		r.nextRowID++
	}
	return nil
}

func (r *fakeEventRepo) snapshotLocked(event *domain.Event) *domain.Event {
	copied := *event
	copied.EventUsers = nil
	for _, eu := range r.participations[event.ID] {
		copied.EventUsers = append(copied.EventUsers, *eu)
	}
	return &copied
}

func (r *fakeEventRepo) failNextFind(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findErr = err
}

func (r *fakeEventRepo) FindEventById(eventID uint) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		err := r.findErr
		r.findErr = nil
		return nil, err
	}
	event, ok := r.events[eventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.snapshotLocked(event), nil
}

func (r *fakeEventRepo) ListEvents() ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for id := r.nextEventID; id > 0; id-- {
		if event, ok := r.events[id]; ok {
			out = append(out, *r.snapshotLocked(event))
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListOpenEvents() ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, event := range r.events {
		if event.Till == nil {
			out = append(out, *r.snapshotLocked(event))
		}
	}
	return out, nil
}

func (r *fakeEventRepo) SaveEvent(event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *event
	copied.EventUsers = nil
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeEventRepo) UpdateEventFields(eventID uint, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["address"].(string); ok {
		event.Address = v
	}
	if v, ok := fields["lat"].(float64); ok {
		event.Lat = &v
	}
	if v, ok := fields["lon"].(float64); ok {
		event.Lon = &v
	}
	if v, ok := fields["description"].(string); ok {
		event.Description = &v
	}
	return nil
}

func (r *fakeEventRepo) DeleteEvent(eventID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, eventID)
	delete(r.participations, eventID)
	return nil
}

func (r *fakeEventRepo) row(eventID, userID uint) *domain.EventUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, eu := range r.participations[eventID] {
		if eu.UserID == userID {
			return eu
		}
	}
	return nil
}

// fakeParticipationRepo works over the same storage as fakeEventRepo.
type fakeParticipationRepo struct {
	events *fakeEventRepo
}

func (r *fakeParticipationRepo) FindByEventAndUser(eventID, userID uint) (*domain.EventUser, error) {
	if eu := r.events.row(eventID, userID); eu != nil {
		copied := *eu
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeParticipationRepo) SaveParticipation(eu *domain.EventUser) error {
	r.events.mu.Lock()
	defer r.events.mu.Unlock()
	for _, row := range r.events.participations[eu.EventID] {
		if row.ID == eu.ID {
			row.Status = eu.Status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeParticipationRepo) DeclinePending(eventID uint) error {
	r.events.mu.Lock()
	defer r.events.mu.Unlock()
	for _, row := range r.events.participations[eventID] {
		if row.Status == domain.ParticipationPending {
			row.Status = domain.ParticipationDeclined
		}
	}
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	nextID uint
	tokens map[uint]*domain.FcmToken // keyed by user id
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{nextID: 1, tokens: map[uint]*domain.FcmToken{}}
}

func (r *fakeTokenRepo) Upsert(userID uint, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.tokens[userID]; ok {
		row.Token = token
		return nil
	}
	r.tokens[userID] = &domain.FcmToken{ID: r.nextID, UserID: userID, Token: token}
	r.nextID++
	return nil
}

func (r *fakeTokenRepo) FindByToken(token string) (*domain.FcmToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.tokens {
		if row.Token == token {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) ListExcept(userID uint) ([]domain.FcmToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FcmToken
	for _, row := range r.tokens {
		if userID == 0 || row.UserID != userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakePushSender struct {
	mu     sync.Mutex
	sent   []*firebase.Message
	failOn map[string]error // token -> error
}

func (s *fakePushSender) Send(_ context.Context, msg *firebase.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failOn[msg.Token]; ok {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakePushSender) messages() []*firebase.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*firebase.Message(nil), s.sent...)
}

type fakeProducer struct {
	mu      sync.Mutex
	records []fakeRecord
}

type fakeRecord struct {
	key   string
	value []byte
}

func (p *fakeProducer) PublishMessage(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, fakeRecord{
		key:   string(key),
		value: append([]byte(nil), value...),
	})
	return nil
}

func (p *fakeProducer) published() []fakeRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]fakeRecord(nil), p.records...)
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []fakeDispatch
}

type fakeDispatch struct {
	eventID uint
	status  domain.EventStatus
	exclude uint
}

func (n *fakeNotifier) SendEventNotification(event *domain.Event, excludeUserID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, fakeDispatch{
		eventID: event.ID,
		status:  event.Status,
		exclude: excludeUserID,
	})
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func (n *fakeNotifier) dispatches() []fakeDispatch {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]fakeDispatch(nil), n.calls...)
}

type fakeIdentity struct {
	mu          sync.Mutex
	signUpErr   error
	signInErr   error
	verifyErr   error
	verified    *firebase.IdentityUser
	passwords   map[string]string // email -> password
	deletedUIDs []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{passwords: map[string]string{}}
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signUpErr != nil {
		return "", f.signUpErr
	}
	f.passwords[email] = password
	return "uid-" + email, nil
}

func (f *fakeIdentity) SignInWithPassword(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return "", f.signInErr
	}
	if stored, ok := f.passwords[email]; ok && stored == password {
		return "id-token-" + email, nil
	}
	return "", gorm.ErrRecordNotFound
}

func (f *fakeIdentity) VerifyIDToken(_ context.Context, _ string) (*firebase.IdentityUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verified, nil
}

func (f *fakeIdentity) UpdateUser(_ context.Context, _, _, _ string) error {
	return nil
}

func (f *fakeIdentity) ChangePassword(_ context.Context, _, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email := range f.passwords {
		f.passwords[email] = newPassword
	}
	return nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedUIDs = append(f.deletedUIDs, uid)
	return nil
}
