package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"

	"github.com/google/uuid"
)

// In-memory repository fakes. They mirror the Postgres implementations
// closely enough for the service-level tests, including the selection
// cascade and the claim-and-bump queue semantics.

// ---------------- users ----------------

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUID(uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDs(ids []string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindAdmins() ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.Role == models.UserRoleAdmin {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) CountAdmins() (int64, error) {
	admins, _ := r.FindAdmins()
	return int64(len(admins)), nil
}

func (r *fakeUserRepo) UpdateRole(userID string, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) UpdateAverageRating(userID string, average float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AverageRating = average
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

// ---------------- gigs ----------------

type fakeGigRepo struct {
	mu    sync.Mutex
	gigs  map[string]*models.Gig
	users *fakeUserRepo
}

func newFakeGigRepo(users *fakeUserRepo) *fakeGigRepo {
	return &fakeGigRepo{gigs: map[string]*models.Gig{}, users: users}
}

func (r *fakeGigRepo) Create(gig *models.Gig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gig.ID == "" {
		gig.ID = uuid.NewString()
	}
	gig.CreatedAt = time.Now()
	cp := *gig
	r.gigs[gig.ID] = &cp
	return nil
}

func (r *fakeGigRepo) FindByID(id string) (*models.Gig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[id]
	if !ok {
		return nil, repositories.ErrGigNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGigRepo) FindByIDWithProvider(id string) (*models.Gig, error) {
	return r.FindByID(id)
}

func (r *fakeGigRepo) Update(gig *models.Gig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.gigs[gig.ID]; !ok {
		return repositories.ErrGigNotFound
	}
	cp := *gig
	r.gigs[gig.ID] = &cp
	return nil
}

func (r *fakeGigRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.gigs[id]; !ok {
		return repositories.ErrGigNotFound
	}
	delete(r.gigs, id)
	return nil
}

func (r *fakeGigRepo) ListVisible(criteria repositories.GigCriteria) ([]models.Gig, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	approval := models.ApprovalStatus(criteria.ApprovalStatus)
	if approval == "" {
		approval = models.ApprovalStatusApproved
	}
	status := models.GigStatus(criteria.Status)
	if status == "" {
		status = models.GigStatusOpen
	}

	var out []models.Gig
	for _, g := range r.gigs {
		if g.ApprovalStatus != approval || g.Status != status {
			continue
		}
		if criteria.Category != "" && g.Category != criteria.Category {
			continue
		}
		if criteria.Location != "" && g.Location != criteria.Location {
			continue
		}
		if criteria.Search != "" &&
			!strings.Contains(strings.ToLower(g.Title), strings.ToLower(criteria.Search)) &&
			!strings.Contains(strings.ToLower(g.Description), strings.ToLower(criteria.Search)) {
			continue
		}
		if criteria.MinBudget > 0 && (g.Budget == nil || *g.Budget < criteria.MinBudget) {
			continue
		}
		if criteria.MaxBudget > 0 && (g.Budget == nil || *g.Budget > criteria.MaxBudget) {
			continue
		}
		out = append(out, *g)
	}

	if criteria.Sort == "rating" {
		rating := func(g models.Gig) float64 {
			if u, ok := r.users.users[g.ProviderID]; ok {
				return u.AverageRating
			}
			return 0
		}
		sort.Slice(out, func(i, j int) bool { return rating(out[i]) > rating(out[j]) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return out, int64(len(out)), nil
}

func (r *fakeGigRepo) ListByProvider(providerID string) ([]models.Gig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Gig
	for _, g := range r.gigs {
		if g.ProviderID == providerID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGigRepo) ListPendingApproval() ([]models.Gig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Gig
	for _, g := range r.gigs {
		if g.ApprovalStatus == models.ApprovalStatusPending {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGigRepo) UpdateStatus(id string, status models.GigStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[id]
	if !ok {
		return repositories.ErrGigNotFound
	}
	g.Status = status
	return nil
}

func (r *fakeGigRepo) SetApproval(id string, approval models.ApprovalStatus, status models.GigStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[id]
	if !ok {
		return repositories.ErrGigNotFound
	}
	g.ApprovalStatus = approval
	g.Status = status
	return nil
}

func (r *fakeGigRepo) ExpireOpenPastDeadline(now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, g := range r.gigs {
		if g.Status == models.GigStatusOpen && g.Deadline != nil && g.Deadline.Before(now) {
			g.Status = models.GigStatusClosed
			count++
		}
	}
	return count, nil
}

func (r *fakeGigRepo) ListExpiringBetween(from, to time.Time) ([]models.Gig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Gig
	for _, g := range r.gigs {
		if g.Status != models.GigStatusOpen || g.Deadline == nil {
			continue
		}
		if g.Deadline.After(from) && g.Deadline.Before(to) {
			out = append(out, *g)
		}
	}
	return out, nil
}

// ---------------- applications ----------------

type fakeApplicationRepo struct {
	mu    sync.Mutex
	apps  map[string]*models.Application
	gigs  *fakeGigRepo
	users *fakeUserRepo
}

func newFakeApplicationRepo(gigs *fakeGigRepo, users *fakeUserRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: map[string]*models.Application{}, gigs: gigs, users: users}
}

func (r *fakeApplicationRepo) Create(application *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	if application.AppliedAt.IsZero() {
		application.AppliedAt = time.Now()
	}
	cp := *application
	r.apps[application.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) FindByID(id string) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeApplicationRepo) FindByIDWithRelations(id string) (*models.Application, error) {
	application, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if gig, err := r.gigs.FindByID(application.GigID); err == nil {
		application.Gig = *gig
	}
	if student, err := r.users.FindByID(application.StudentID); err == nil {
		application.Student = *student
	}
	return application, nil
}

func (r *fakeApplicationRepo) FindByGigAndStudent(gigID, studentID string) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.GigID == gigID && a.StudentID == studentID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrApplicationNotFound
}

func (r *fakeApplicationRepo) ListByGig(gigID string) ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Application
	for _, a := range r.apps {
		if a.GigID == gigID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.Before(out[j].AppliedAt) })
	return out, nil
}

func (r *fakeApplicationRepo) ListByStudent(studentID string) ([]models.Application, error) {
	r.mu.Lock()
	var out []models.Application
	for _, a := range r.apps {
		if a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	r.mu.Unlock()

	for i := range out {
		if gig, err := r.gigs.FindByID(out[i].GigID); err == nil {
			out[i].Gig = *gig
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) ListStudentIDsByGig(gigID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, a := range r.apps {
		if a.GigID == gigID {
			ids = append(ids, a.StudentID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeApplicationRepo) Update(application *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[application.ID]; !ok {
		return repositories.ErrApplicationNotFound
	}
	cp := *application
	cp.Gig = models.Gig{}
	cp.Student = models.User{}
	r.apps[application.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) UpdateStatus(id string, status models.ApplicationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeApplicationRepo) UpdateBatch(applications []*models.Application) error {
	for _, a := range applications {
		if err := r.Update(a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeApplicationRepo) SelectCandidate(gigID, applicationID string) (*models.Application, []string, error) {
	gig, err := r.gigs.FindByID(gigID)
	if err != nil {
		return nil, nil, err
	}
	if gig.Status != models.GigStatusOpen {
		return nil, nil, repositories.ErrGigNotSelectable
	}

	r.mu.Lock()
	accepted, ok := r.apps[applicationID]
	if !ok || accepted.GigID != gigID {
		r.mu.Unlock()
		return nil, nil, repositories.ErrApplicationNotFound
	}

	now := time.Now()
	accepted.Status = models.ApplicationStatusAccepted
	accepted.SelectedAt = &now

	var rejectedIDs []string
	for id, a := range r.apps {
		if a.GigID == gigID && id != applicationID {
			a.Status = models.ApplicationStatusRejected
			rejectedIDs = append(rejectedIDs, id)
		}
	}
	cp := *accepted
	r.mu.Unlock()

	if err := r.gigs.UpdateStatus(gigID, models.GigStatusInProgress); err != nil {
		return nil, nil, err
	}
	sort.Strings(rejectedIDs)
	return &cp, rejectedIDs, nil
}

func (r *fakeApplicationRepo) HasBlockingApplications(gigID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.GigID == gigID &&
			(a.Status == models.ApplicationStatusAccepted || a.Status == models.ApplicationStatusCompleted) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeApplicationRepo) CountByGig(gigID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, a := range r.apps {
		if a.GigID == gigID {
			count++
		}
	}
	return count, nil
}

// ---------------- ratings ----------------

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[string]*models.Rating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: map[string]*models.Rating{}}
}

func (r *fakeRatingRepo) Create(rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now()
	}
	cp := *rating
	r.ratings[rating.ID] = &cp
	return nil
}

func (r *fakeRatingRepo) FindByID(id string) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.ratings[id]
	if !ok {
		return nil, repositories.ErrRatingNotFound
	}
	cp := *rt
	return &cp, nil
}

func (r *fakeRatingRepo) FindByGigRaterRatee(gigID, raterID, rateeID string) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.ratings {
		if rt.GigID == gigID && rt.RaterID == raterID && rt.RateeID == rateeID {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, repositories.ErrRatingNotFound
}

func (r *fakeRatingRepo) Update(rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ratings[rating.ID]; !ok {
		return repositories.ErrRatingNotFound
	}
	cp := *rating
	r.ratings[rating.ID] = &cp
	return nil
}

func (r *fakeRatingRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ratings[id]; !ok {
		return repositories.ErrRatingNotFound
	}
	delete(r.ratings, id)
	return nil
}

func (r *fakeRatingRepo) ListForUser(userID string) ([]models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rating
	for _, rt := range r.ratings {
		if rt.RateeID == userID {
			out = append(out, *rt)
		}
	}
	return out, nil
}

func (r *fakeRatingRepo) ListFlagged() ([]models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rating
	for _, rt := range r.ratings {
		if rt.IsFlagged {
			out = append(out, *rt)
		}
	}
	return out, nil
}

func (r *fakeRatingRepo) AverageForUser(userID string) (float64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	var count int64
	for _, rt := range r.ratings {
		if rt.RateeID == userID && rt.ModerationStatus == models.ModerationStatusApproved {
			sum += float64(rt.Score)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (r *fakeRatingRepo) Flag(id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.ratings[id]
	if !ok {
		return repositories.ErrRatingNotFound
	}
	rt.IsFlagged = true
	rt.FlagReason = reason
	rt.ModerationStatus = models.ModerationStatusPending
	return nil
}

func (r *fakeRatingRepo) Moderate(id, moderatorID string, status models.ModerationStatus, clearFlag bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.ratings[id]
	if !ok {
		return repositories.ErrRatingNotFound
	}
	now := time.Now()
	rt.ModerationStatus = status
	rt.ModeratedBy = &moderatorID
	rt.ModeratedAt = &now
	if clearFlag {
		rt.IsFlagged = false
		rt.FlagReason = ""
	}
	return nil
}

// ---------------- notifications ----------------

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[string]*models.Notification{}}
}

func (r *fakeNotificationRepo) Create(notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	cp := *notification
	r.notifications[notification.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) CreateBulk(notifications []*models.Notification) error {
	for _, n := range notifications {
		if err := r.Create(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNotificationRepo) FindByID(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotificationRepo) ListForUser(userID string, criteria repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if criteria.UnreadOnly && n.IsRead {
			continue
		}
		if criteria.Type != "" && n.Type != criteria.Type {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) ListRecent(userID string, limit int) ([]models.Notification, error) {
	all, _, err := r.ListForUser(userID, repositories.NotificationCriteria{})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeNotificationRepo) MarkRead(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return repositories.ErrNotificationNotFound
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var updated int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) UnreadCount(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) DeleteReadOlderThan(userID string, olderThan time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.notifications {
		if n.UserID == userID && n.IsRead && n.CreatedAt.Before(olderThan) {
			delete(r.notifications, id)
		}
	}
	return nil
}

// ---------------- preferences ----------------

type fakePreferenceRepo struct {
	mu    sync.Mutex
	prefs map[string]*models.NotificationPreference // userID|type
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{prefs: map[string]*models.NotificationPreference{}}
}

func prefKey(userID, notificationType string) string {
	return userID + "|" + notificationType
}

func (r *fakePreferenceRepo) ListForUser(userID string) ([]models.NotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.NotificationPreference
	for _, p := range r.prefs {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NotificationType < out[j].NotificationType })
	return out, nil
}

func (r *fakePreferenceRepo) FindByUserAndType(userID, notificationType string) (*models.NotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prefs[prefKey(userID, notificationType)]
	if !ok {
		return nil, repositories.ErrPreferenceNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePreferenceRepo) SeedDefaults(userID string) ([]models.NotificationPreference, error) {
	r.mu.Lock()
	for _, def := range models.DefaultPreferences(userID) {
		key := prefKey(userID, def.NotificationType)
		if _, ok := r.prefs[key]; !ok {
			cp := def
			cp.ID = uuid.NewString()
			r.prefs[key] = &cp
		}
	}
	r.mu.Unlock()
	return r.ListForUser(userID)
}

func (r *fakePreferenceRepo) Update(pref *models.NotificationPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	cp := *pref
	r.prefs[prefKey(pref.UserID, pref.NotificationType)] = &cp
	return nil
}

// ---------------- delivery queues ----------------

type fakeQueueRepo struct {
	mu     sync.Mutex
	emails []*models.EmailQueueItem
	pushes []*models.PushQueueItem
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{}
}

func (r *fakeQueueRepo) EnqueueEmail(item *models.EmailQueueItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now()
	item.Status = models.QueueStatusPending
	cp := *item
	r.emails = append(r.emails, &cp)
	return nil
}

func (r *fakeQueueRepo) EnqueuePush(item *models.PushQueueItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now()
	item.Status = models.QueueStatusPending
	cp := *item
	r.pushes = append(r.pushes, &cp)
	return nil
}

func (r *fakeQueueRepo) ClaimPendingEmails(limit int) ([]models.EmailQueueItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []models.EmailQueueItem
	for _, item := range r.emails {
		if item.Status != models.QueueStatusPending {
			continue
		}
		item.Attempts++
		item.LastAttempt = &now
		out = append(out, *item)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeQueueRepo) ClaimPendingPush(limit int) ([]models.PushQueueItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []models.PushQueueItem
	for _, item := range r.pushes {
		if item.Status != models.QueueStatusPending {
			continue
		}
		item.Attempts++
		item.LastAttempt = &now
		out = append(out, *item)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeQueueRepo) MarkEmailSent(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.emails {
		if item.ID == id {
			now := time.Now()
			item.Status = models.QueueStatusSent
			item.SentAt = &now
			return nil
		}
	}
	return repositories.ErrQueueItemNotFound
}

func (r *fakeQueueRepo) MarkEmailFailed(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.emails {
		if item.ID == id {
			item.Status = models.QueueStatusFailed
			return nil
		}
	}
	return repositories.ErrQueueItemNotFound
}

func (r *fakeQueueRepo) MarkPushSent(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.pushes {
		if item.ID == id {
			now := time.Now()
			item.Status = models.QueueStatusSent
			item.SentAt = &now
			return nil
		}
	}
	return repositories.ErrQueueItemNotFound
}

func (r *fakeQueueRepo) MarkPushFailed(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.pushes {
		if item.ID == id {
			item.Status = models.QueueStatusFailed
			return nil
		}
	}
	return repositories.ErrQueueItemNotFound
}

func (r *fakeQueueRepo) Counts() (*repositories.QueueCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := &repositories.QueueCounts{}
	for _, item := range r.emails {
		switch item.Status {
		case models.QueueStatusPending:
			counts.EmailPending++
		case models.QueueStatusFailed:
			counts.EmailFailed++
		}
	}
	for _, item := range r.pushes {
		switch item.Status {
		case models.QueueStatusPending:
			counts.PushPending++
		case models.QueueStatusFailed:
			counts.PushFailed++
		}
	}
	return counts, nil
}

// emailsFor returns the user's email queue items, any status.
func (r *fakeQueueRepo) emailsFor(userID string) []models.EmailQueueItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EmailQueueItem
	for _, item := range r.emails {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out
}

func (r *fakeQueueRepo) pushesFor(userID string) []models.PushQueueItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PushQueueItem
	for _, item := range r.pushes {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out
}

// ---------------- saved gigs ----------------

type fakeSavedGigRepo struct {
	mu    sync.Mutex
	saved []*models.SavedGig
	gigs  *fakeGigRepo
}

func newFakeSavedGigRepo(gigs *fakeGigRepo) *fakeSavedGigRepo {
	return &fakeSavedGigRepo{gigs: gigs}
}

func (r *fakeSavedGigRepo) Save(userID, gigID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.saved {
		if s.UserID == userID && s.GigID == gigID {
			return nil
		}
	}
	r.saved = append(r.saved, &models.SavedGig{
		BaseModel: models.BaseModel{ID: uuid.NewString(), CreatedAt: time.Now()},
		UserID:    userID,
		GigID:     gigID,
	})
	return nil
}

func (r *fakeSavedGigRepo) Unsave(userID, gigID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.saved {
		if s.UserID == userID && s.GigID == gigID {
			r.saved = append(r.saved[:i], r.saved[i+1:]...)
			return nil
		}
	}
	return repositories.ErrSavedGigNotFound
}

func (r *fakeSavedGigRepo) IsSaved(userID, gigID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.saved {
		if s.UserID == userID && s.GigID == gigID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSavedGigRepo) ListForUser(userID string) ([]models.SavedGig, error) {
	r.mu.Lock()
	var out []models.SavedGig
	for _, s := range r.saved {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	r.mu.Unlock()

	for i := range out {
		if gig, err := r.gigs.FindByID(out[i].GigID); err == nil {
			out[i].Gig = *gig
		}
	}
	return out, nil
}

func (r *fakeSavedGigRepo) ListSaverIDs(gigID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, s := range r.saved {
		if s.GigID == gigID {
			ids = append(ids, s.UserID)
		}
	}
	return ids, nil
}

// ---------------- audit ----------------

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Create(entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeAuditRepo) List(criteria repositories.AuditCriteria) ([]models.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AuditLog
	for _, e := range r.entries {
		if criteria.Action != "" && e.Action != criteria.Action {
			continue
		}
		if criteria.ResourceType != "" && e.ResourceType != criteria.ResourceType {
			continue
		}
		if criteria.UserID != "" && (e.UserID == nil || *e.UserID != criteria.UserID) {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// ---------------- environment ----------------

// testEnv wires every service against the in-memory fakes.
type testEnv struct {
	users   *fakeUserRepo
	gigs    *fakeGigRepo
	apps    *fakeApplicationRepo
	ratings *fakeRatingRepo
	notices *fakeNotificationRepo
	prefs   *fakePreferenceRepo
	queue   *fakeQueueRepo
	saved   *fakeSavedGigRepo
	audit   *fakeAuditRepo

	notificationService NotificationService
	gigService          GigService
	applicationService  ApplicationService
	ratingService       RatingService
	savedGigService     SavedGigService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:   newFakeUserRepo(),
		ratings: newFakeRatingRepo(),
		notices: newFakeNotificationRepo(),
		prefs:   newFakePreferenceRepo(),
		queue:   newFakeQueueRepo(),
		audit:   newFakeAuditRepo(),
	}
	env.gigs = newFakeGigRepo(env.users)
	env.apps = newFakeApplicationRepo(env.gigs, env.users)
	env.saved = newFakeSavedGigRepo(env.gigs)

	env.notificationService = NewNotificationService(env.notices, env.prefs, env.queue, env.users, env.audit)
	env.applicationService = NewApplicationService(env.apps, env.gigs, env.users, env.notificationService)
	env.gigService = NewGigService(env.gigs, env.apps, env.saved, env.audit, env.notificationService, env.applicationService)
	env.ratingService = NewRatingService(env.ratings, env.gigs, env.apps, env.users, env.audit, env.notificationService)
	env.savedGigService = NewSavedGigService(env.saved, env.gigs)
	return env
}

func (env *testEnv) addUser(name string, role models.UserRole) *models.User {
	user := &models.User{
		UID:          uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		Role:         role,
		PasswordHash: "x",
	}
	if err := env.users.Create(user); err != nil {
		panic(err)
	}
	return user
}

func (env *testEnv) addGig(providerID string, approval models.ApprovalStatus, status models.GigStatus) *models.Gig {
	gig := &models.Gig{
		Title:          "Test gig",
		Description:    "Do the thing",
		ProviderID:     providerID,
		Status:         status,
		ApprovalStatus: approval,
	}
	if err := env.gigs.Create(gig); err != nil {
		panic(err)
	}
	return gig
}

func (env *testEnv) addApplication(gigID, studentID string, status models.ApplicationStatus) *models.Application {
	application := &models.Application{
		GigID:     gigID,
		StudentID: studentID,
		Status:    status,
	}
	if err := env.apps.Create(application); err != nil {
		panic(err)
	}
	return application
}
