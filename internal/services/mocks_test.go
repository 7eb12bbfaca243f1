package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
)

// fakeRepository is an in-memory repositories.Repository for service tests.
type fakeRepository struct {
	mu sync.Mutex

	users         map[uint]*models.User
	quizzes       map[uint]*models.Quiz
	orders        map[string]*models.Order
	results       map[uint]*models.Result
	notifications []*models.Notification
	videos        map[uint]*models.MentorshipVideo

	nextUserID   uint
	nextQuizID   uint
	nextResultID uint
	nextVideoID  uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:   make(map[uint]*models.User),
		quizzes: make(map[uint]*models.Quiz),
		orders:  make(map[string]*models.Order),
		results: make(map[uint]*models.Result),
		videos:  make(map[uint]*models.MentorshipVideo),
	}
}

func (f *fakeRepository) User() repositories.UserRepository                 { return &fakeUserRepo{f} }
func (f *fakeRepository) Quiz() repositories.QuizRepository                 { return &fakeQuizRepo{f} }
func (f *fakeRepository) Result() repositories.ResultRepository             { return &fakeResultRepo{f} }
func (f *fakeRepository) Order() repositories.OrderRepository               { return &fakeOrderRepo{f} }
func (f *fakeRepository) Notification() repositories.NotificationRepository { return &fakeNotifRepo{f} }
func (f *fakeRepository) Mentorship() repositories.MentorshipRepository     { return &fakeVideoRepo{f} }
func (f *fakeRepository) Dashboard() repositories.DashboardRepository       { return &fakeDashRepo{f} }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// addUser seeds a user and returns it with an assigned id.
func (f *fakeRepository) addUser(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUserID++
	u.ID = f.nextUserID
	f.users[u.ID] = u
	return u
}

// addQuiz seeds a quiz and returns it with an assigned id.
func (f *fakeRepository) addQuiz(q *models.Quiz) *models.Quiz {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextQuizID++
	q.ID = f.nextQuizID
	f.quizzes[q.ID] = q
	return q
}

// ===== USER =====

type fakeUserRepo struct{ f *fakeRepository }

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.f.addUser(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.f.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.f.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.User
	for _, u := range r.f.users {
		if filters.Search != "" &&
			!strings.Contains(strings.ToLower(u.Name), strings.ToLower(filters.Search)) &&
			!strings.Contains(strings.ToLower(u.Email), strings.ToLower(filters.Search)) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) GetByRoles(ctx context.Context, tx *gorm.DB, roles ...models.UserRole) ([]*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.User
	for _, u := range r.f.users {
		if !u.IsActive {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				cp := *u
				out = append(out, &cp)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, tx *gorm.DB, id uint, role models.UserRole) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, isActive bool) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = isActive
	return nil
}

func (r *fakeUserRepo) AppendQuizTaken(ctx context.Context, tx *gorm.DB, id uint, entry models.QuizTaken) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.QuizzesTaken = append(u.QuizzesTaken, entry)
	return nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, tx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// ===== QUIZ =====

type fakeQuizRepo struct{ f *fakeRepository }

func (r *fakeQuizRepo) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	r.f.addQuiz(quiz)
	return nil
}

func (r *fakeQuizRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	q, ok := r.f.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakeQuizRepo) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.quizzes[quiz.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *quiz
	r.f.quizzes[quiz.ID] = &cp
	return nil
}

func (r *fakeQuizRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.quizzes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.f.quizzes, id)
	return nil
}

func (r *fakeQuizRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Quiz
	for _, q := range r.f.quizzes {
		if filters.CreatedBy != nil && q.CreatedBy != *filters.CreatedBy {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeQuizRepo) GetByTypes(ctx context.Context, tx *gorm.DB, types []models.QuizType, limit int) ([]*models.Quiz, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Quiz
	for _, q := range r.f.quizzes {
		for _, qt := range types {
			if q.QuizType == qt {
				cp := *q
				out = append(out, &cp)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeQuizRepo) GetByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*models.Quiz, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Quiz
	for _, q := range r.f.quizzes {
		if q.Category == category {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeQuizRepo) GetRegisteredByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Quiz, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Quiz
	for _, q := range r.f.quizzes {
		if q.HasParticipant(userID) {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeQuizRepo) CountByCategory(ctx context.Context, tx *gorm.DB) ([]repositories.CategoryCount, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	counts := make(map[string]int64)
	for _, q := range r.f.quizzes {
		if q.Category != "" {
			counts[q.Category]++
		}
	}
	var out []repositories.CategoryCount
	for cat, n := range counts {
		out = append(out, repositories.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (r *fakeQuizRepo) GetIDsByCreator(ctx context.Context, tx *gorm.DB, creatorID uint) ([]uint, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []uint
	for _, q := range r.f.quizzes {
		if q.CreatedBy == creatorID {
			out = append(out, q.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ===== ORDER =====

type fakeOrderRepo struct{ f *fakeRepository }

func (r *fakeOrderRepo) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	order.ID = uint(len(r.f.orders) + 1)
	cp := *order
	r.f.orders[order.OrderID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Order, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	o, ok := r.f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.orders[order.OrderID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *order
	r.f.orders[order.OrderID] = &cp
	return nil
}

func (r *fakeOrderRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.OrderFilters) ([]*models.Order, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Order
	for _, o := range r.f.orders {
		if filters.UserID != nil && o.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) HasCompletedQuizOrder(ctx context.Context, tx *gorm.DB, userID, quizID uint) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, o := range r.f.orders {
		if o.UserID == userID && o.Status == models.OrderCompleted && o.Item.Data().ItemID == quizID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) SumCompletedAmount(ctx context.Context, tx *gorm.DB) (float64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var sum float64
	for _, o := range r.f.orders {
		if o.Status == models.OrderCompleted {
			sum += o.Amount
		}
	}
	return sum, nil
}

// ===== RESULT =====

type fakeResultRepo struct{ f *fakeRepository }

func (r *fakeResultRepo) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.nextResultID++
	result.ID = r.f.nextResultID
	cp := *result
	r.f.results[result.ID] = &cp
	return nil
}

func (r *fakeResultRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	res, ok := r.f.results[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *fakeResultRepo) GetByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.Result, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, res := range r.f.results {
		if res.UserID == userID && res.QuizID == quizID {
			cp := *res
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeResultRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Result
	for _, res := range r.f.results {
		if filters.UserID != nil && res.UserID != *filters.UserID {
			continue
		}
		if filters.QuizID != nil && res.QuizID != *filters.QuizID {
			continue
		}
		if len(filters.QuizIDs) > 0 {
			found := false
			for _, id := range filters.QuizIDs {
				if res.QuizID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filters.Status != nil && res.Status != *filters.Status {
			continue
		}
		cp := *res
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeResultRepo) Leaderboard(ctx context.Context, tx *gorm.DB, quizID uint, limit int) ([]*models.Result, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Result
	for _, res := range r.f.results {
		if res.QuizID != quizID || res.Status != models.ResultCompleted {
			continue
		}
		cp := *res
		if u, ok := r.f.users[res.UserID]; ok {
			cp.User = *u
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].TimeTaken < out[j].TimeTaken
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeResultRepo) GetQuizStats(ctx context.Context, tx *gorm.DB, quizID uint) (*repositories.QuizResultStats, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	stats := &repositories.QuizResultStats{}
	var passed int64
	var pctSum float64
	for _, res := range r.f.results {
		if res.QuizID != quizID {
			continue
		}
		stats.Attempts++
		if res.Status == models.ResultCompleted {
			stats.Completed++
			pctSum += res.Percentage()
			if res.Passed {
				passed++
			}
		}
	}
	if stats.Completed > 0 {
		stats.AveragePercentage = pctSum / float64(stats.Completed)
		stats.PassRate = float64(passed) / float64(stats.Completed) * 100
	}
	return stats, nil
}

func (r *fakeResultRepo) GetUserStats(ctx context.Context, tx *gorm.DB, userID uint) (*repositories.UserResultStats, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	stats := &repositories.UserResultStats{}
	var scoreSum float64
	for _, res := range r.f.results {
		if res.UserID != userID || res.Status != models.ResultCompleted {
			continue
		}
		stats.TotalAttempts++
		scoreSum += float64(res.Score)
		if res.Passed {
			stats.PassedCount++
		}
	}
	if stats.TotalAttempts > 0 {
		stats.AverageScore = scoreSum / float64(stats.TotalAttempts)
		stats.PassRate = float64(stats.PassedCount) / float64(stats.TotalAttempts) * 100
	}
	return stats, nil
}

// ===== NOTIFICATION =====

type fakeNotifRepo struct{ f *fakeRepository }

func (r *fakeNotifRepo) CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, n := range notifications {
		n.ID = uint(len(r.f.notifications) + 1)
		cp := *n
		r.f.notifications = append(r.f.notifications, &cp)
	}
	return nil
}

func (r *fakeNotifRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.Notification, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.f.notifications {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotifRepo) MarkRead(ctx context.Context, tx *gorm.DB, userID uint, ids []uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var updated int64
	for _, n := range r.f.notifications {
		if n.UserID != userID {
			continue
		}
		for _, id := range ids {
			if n.ID == id {
				if !n.IsRead {
					n.IsRead = true
				}
				updated++
				break
			}
		}
	}
	return updated, nil
}

// ===== MENTORSHIP =====

type fakeVideoRepo struct{ f *fakeRepository }

func (r *fakeVideoRepo) Create(ctx context.Context, tx *gorm.DB, video *models.MentorshipVideo) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.nextVideoID++
	video.ID = r.f.nextVideoID
	cp := *video
	r.f.videos[video.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.MentorshipVideo, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v, ok := r.f.videos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) Update(ctx context.Context, tx *gorm.DB, video *models.MentorshipVideo) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.videos[video.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *video
	r.f.videos[video.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.videos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.f.videos, id)
	return nil
}

func (r *fakeVideoRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.MentorshipVideo, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.MentorshipVideo
	for _, v := range r.f.videos {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeVideoRepo) IncrementViews(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v, ok := r.f.videos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Views++
	return nil
}

// ===== DASHBOARD =====

type fakeDashRepo struct{ f *fakeRepository }

func (r *fakeDashRepo) GetPlatformTotals(ctx context.Context, tx *gorm.DB) (*repositories.PlatformTotals, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	totals := &repositories.PlatformTotals{
		Users:   int64(len(r.f.users)),
		Quizzes: int64(len(r.f.quizzes)),
		Results: int64(len(r.f.results)),
	}
	for _, res := range r.f.results {
		if res.Status == models.ResultCompleted {
			totals.CompletedResults++
			if res.Passed {
				totals.PassedResults++
			}
		}
	}
	for _, o := range r.f.orders {
		if o.Status == models.OrderCompleted {
			totals.Revenue += o.Amount
		}
	}
	return totals, nil
}

func (r *fakeDashRepo) GetCreatorTotals(ctx context.Context, tx *gorm.DB, quizIDs []uint) (*repositories.PlatformTotals, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	totals := &repositories.PlatformTotals{Quizzes: int64(len(quizIDs))}
	in := make(map[uint]bool, len(quizIDs))
	for _, id := range quizIDs {
		in[id] = true
	}
	participants := make(map[uint]bool)
	for _, res := range r.f.results {
		if !in[res.QuizID] {
			continue
		}
		totals.Results++
		participants[res.UserID] = true
		if res.Status == models.ResultCompleted {
			totals.CompletedResults++
			if res.Passed {
				totals.PassedResults++
			}
		}
	}
	totals.Users = int64(len(participants))
	return totals, nil
}

func (r *fakeDashRepo) GetQuizzesByCategory(ctx context.Context, tx *gorm.DB) ([]repositories.CategoryCount, error) {
	return (&fakeQuizRepo{r.f}).CountByCategory(ctx, tx)
}

func (r *fakeDashRepo) GetAttemptsByDay(ctx context.Context, tx *gorm.DB, days int) ([]repositories.DailyCount, error) {
	return nil, nil
}
