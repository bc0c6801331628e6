package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/repository"
	pkgerrors "tutorlink/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	slots map[string]*model.AvailabilitySlot
	seq   int
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{slots: make(map[string]*model.AvailabilitySlot)}
}

func (m *mockAvailabilityRepo) Create(_ context.Context, slot *model.AvailabilitySlot) error {
	if slot.SlotID == "" {
		m.seq++
		slot.SlotID = fmt.Sprintf("slot-%d", m.seq)
	}
	cp := *slot
	m.slots[slot.SlotID] = &cp
	return nil
}

func (m *mockAvailabilityRepo) GetByID(_ context.Context, id string) (*model.AvailabilitySlot, error) {
	if s, ok := m.slots[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAvailabilityRepo) ListByTutor(_ context.Context, tutorID string) ([]model.AvailabilitySlot, error) {
	var result []model.AvailabilitySlot
	for _, s := range m.slots {
		if s.TutorID == tutorID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockAvailabilityRepo) ListByTutorAndDay(_ context.Context, tutorID string, dayOfWeek int) ([]model.AvailabilitySlot, error) {
	var result []model.AvailabilitySlot
	for _, s := range m.slots {
		if s.TutorID == tutorID && s.DayOfWeek == dayOfWeek {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockAvailabilityRepo) Update(_ context.Context, slot *model.AvailabilitySlot) error {
	cp := *slot
	m.slots[slot.SlotID] = &cp
	return nil
}

func (m *mockAvailabilityRepo) Delete(_ context.Context, id string) error {
	delete(m.slots, id)
	return nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[string]*model.Class
	seq     int
	// forcedConflicts 前 N 次 Update 强制返回乐观锁冲突
	forcedConflicts int
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class)}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		m.seq++
		class.ClassID = fmt.Sprintf("class-%d", m.seq)
	}
	if class.Version == 0 {
		class.Version = 1
	}
	cp := *class
	m.classes[class.ClassID] = &cp
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(_ context.Context, filter repository.ClassFilter, offset, limit int) ([]model.Class, int64, error) {
	var result []model.Class
	for _, c := range m.classes {
		if filter.TutorID != "" && c.TutorID != filter.TutorID {
			continue
		}
		if filter.Subject != "" && c.Subject != filter.Subject {
			continue
		}
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockClassRepo) ListByTutor(_ context.Context, tutorID string) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		if c.TutorID == tutorID && c.IsActive {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	if m.forcedConflicts > 0 {
		m.forcedConflicts--
		return pkgerrors.ErrOptimisticLock
	}
	stored, ok := m.classes[class.ClassID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != class.Version {
		return pkgerrors.ErrOptimisticLock
	}
	class.Version++
	cp := *class
	m.classes[class.ClassID] = &cp
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment
	seq         int
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[string]*model.Enrollment)}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	if enrollment.EnrollmentID == "" {
		m.seq++
		enrollment.EnrollmentID = fmt.Sprintf("enr-%d", m.seq)
	}
	cp := *enrollment
	m.enrollments[enrollment.EnrollmentID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) GetActive(_ context.Context, classID, studentID string) (*model.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.ClassID == classID && e.StudentID == studentID && e.Status == model.EnrollmentStatusActive {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListActiveByClass(_ context.Context, classID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.ClassID == classID && e.Status == model.EnrollmentStatusActive {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result, nil
}

func (m *mockEnrollmentRepo) ListActiveByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.Status == model.EnrollmentStatusActive {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) Update(_ context.Context, enrollment *model.Enrollment) error {
	cp := *enrollment
	m.enrollments[enrollment.EnrollmentID] = &cp
	return nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions        map[string]*model.Session
	seq             int
	forcedConflicts int
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.Session) error {
	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("sess-%d", m.seq)
	}
	if session.Version == 0 {
		session.Version = 1
	}
	cp := *session
	m.sessions[session.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		cp := *s
		cp.StudentIDs = append(model.StringArray(nil), s.StudentIDs...)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) List(_ context.Context, filter repository.SessionFilter, offset, limit int) ([]model.Session, int64, error) {
	var result []model.Session
	for _, s := range m.sessions {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.TutorID != "" && s.TutorID != filter.TutorID {
			continue
		}
		if filter.StudentID != "" && !s.StudentIDs.Contains(filter.StudentID) {
			continue
		}
		if filter.ClassID != "" && (s.ClassID == nil || *s.ClassID != filter.ClassID) {
			continue
		}
		if filter.From != nil && s.StartTime.Before(*filter.From) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, int64(len(result)), nil
}

func (m *mockSessionRepo) ListByTutorInRange(_ context.Context, tutorID string, from, to time.Time) ([]model.Session, error) {
	var result []model.Session
	for _, s := range m.sessions {
		if s.TutorID != tutorID {
			continue
		}
		if s.Status != model.SessionStatusPending && s.Status != model.SessionStatusConfirmed {
			continue
		}
		if s.ClassID != nil {
			continue
		}
		if s.StartTime.Before(to) && s.EndTime.After(from) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSessionRepo) GetNextByClass(_ context.Context, classID string, after time.Time) (*model.Session, error) {
	var next *model.Session
	for _, s := range m.sessions {
		if s.ClassID == nil || *s.ClassID != classID {
			continue
		}
		if s.Status == model.SessionStatusCancelled || s.Status == model.SessionStatusRescheduled {
			continue
		}
		if !s.StartTime.After(after) {
			continue
		}
		if next == nil || s.StartTime.Before(next.StartTime) {
			next = s
		}
	}
	if next == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *next
	return &cp, nil
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.Session) error {
	if m.forcedConflicts > 0 {
		m.forcedConflicts--
		return pkgerrors.ErrOptimisticLock
	}
	stored, ok := m.sessions[session.SessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != session.Version {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version++
	cp := *session
	cp.StudentIDs = append(model.StringArray(nil), session.StudentIDs...)
	m.sessions[session.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

// ── Mock SessionRequestRepository ──

type mockSessionRequestRepo struct {
	requests        map[string]*model.SessionRequest
	seq             int
	forcedConflicts int
}

func newMockSessionRequestRepo() *mockSessionRequestRepo {
	return &mockSessionRequestRepo{requests: make(map[string]*model.SessionRequest)}
}

func (m *mockSessionRequestRepo) Create(_ context.Context, request *model.SessionRequest) error {
	// 模拟局部唯一索引：同一学生同一课节至多一条 pending
	for _, r := range m.requests {
		if r.StudentID == request.StudentID && r.SessionID == request.SessionID && r.Status == model.RequestStatusPending {
			return repository.ErrDuplicatePending
		}
	}
	if request.RequestID == "" {
		m.seq++
		request.RequestID = fmt.Sprintf("req-%d", m.seq)
	}
	if request.Version == 0 {
		request.Version = 1
	}
	cp := *request
	m.requests[request.RequestID] = &cp
	return nil
}

func (m *mockSessionRequestRepo) GetByID(_ context.Context, id string) (*model.SessionRequest, error) {
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRequestRepo) List(_ context.Context, filter repository.SessionRequestFilter, offset, limit int) ([]model.SessionRequest, int64, error) {
	var result []model.SessionRequest
	for _, r := range m.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.TutorID != "" && r.TutorID != filter.TutorID {
			continue
		}
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.ClassID != "" && (r.ClassID == nil || *r.ClassID != filter.ClassID) {
			continue
		}
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

func (m *mockSessionRequestRepo) ListPendingBySession(_ context.Context, sessionID string) ([]model.SessionRequest, error) {
	var result []model.SessionRequest
	for _, r := range m.requests {
		if r.SessionID == sessionID && r.Status == model.RequestStatusPending {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockSessionRequestRepo) Update(_ context.Context, request *model.SessionRequest) error {
	if m.forcedConflicts > 0 {
		m.forcedConflicts--
		return pkgerrors.ErrOptimisticLock
	}
	stored, ok := m.requests[request.RequestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != request.Version {
		return pkgerrors.ErrOptimisticLock
	}
	request.Version++
	cp := *request
	m.requests[request.RequestID] = &cp
	return nil
}

func (m *mockSessionRequestRepo) Delete(_ context.Context, id string) error {
	delete(m.requests, id)
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	m.seq++
	if notification.NotificationID == "" {
		notification.NotificationID = fmt.Sprintf("ntf-%d", m.seq)
	}
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *mockNotificationRepo) BatchCreate(ctx context.Context, notifications []model.Notification) error {
	for i := range notifications {
		if err := m.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	for i := range m.notifications {
		if m.notifications[i].NotificationID == id {
			cp := m.notifications[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string) error {
	for i := range m.notifications {
		if m.notifications[i].NotificationID == id {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

// byUser 测试辅助：取某用户的全部通知
func (m *mockNotificationRepo) byUser(userID string) []model.Notification {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}

// [自证通过] internal/service/mock_repos_test.go
