package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
)

// fakeRepository is an in-memory Repository for service tests. It mimics
// the Postgres semantics the services rely on: unique indexes surface
// gorm.ErrDuplicatedKey, missing rows surface gorm.ErrRecordNotFound, and
// WithTransaction rolls everything back when fn fails.
type fakeRepository struct {
	mu sync.Mutex

	users       map[uint]*models.User
	questions   map[uint]*models.Question
	assignments []*models.QuestionAssignment
	partitions  map[uint]*models.AnswerPartition
	answers     map[uint]*models.Answer

	nextUserID       uint
	nextQuestionID   uint
	nextAssignmentID uint
	nextPartitionID  uint
	nextAnswerID     uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:      make(map[uint]*models.User),
		questions:  make(map[uint]*models.Question),
		partitions: make(map[uint]*models.AnswerPartition),
		answers:    make(map[uint]*models.Answer),
	}
}

// ===== TEST SEED HELPERS =====

func (f *fakeRepository) addUser(username string, role models.UserRole) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUserID++
	u := &models.User{ID: f.nextUserID, Username: username, PasswordHash: "x", Role: role}
	f.users[u.ID] = u
	return u
}

func (f *fakeRepository) addQuestion(text string, points int) *models.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextQuestionID++
	q := &models.Question{ID: f.nextQuestionID, Question: text, Points: points, CreatedBy: 1}
	f.questions[q.ID] = q
	return q
}

func (f *fakeRepository) addPartition(userID uint, username string) *models.AnswerPartition {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPartitionID++
	p := &models.AnswerPartition{ID: f.nextPartitionID, UserID: userID, Username: username}
	f.partitions[p.ID] = p
	return p
}

func (f *fakeRepository) assignmentCount(userID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.assignments {
		if a.UserID == userID {
			n++
		}
	}
	return n
}

// ===== REPOSITORY INTERFACE =====

func (f *fakeRepository) User() repositories.UserRepository             { return &fakeUserRepo{f} }
func (f *fakeRepository) Question() repositories.QuestionRepository     { return &fakeQuestionRepo{f} }
func (f *fakeRepository) Assignment() repositories.AssignmentRepository { return &fakeAssignmentRepo{f} }
func (f *fakeRepository) Partition() repositories.PartitionRepository   { return &fakePartitionRepo{f} }
func (f *fakeRepository) Answer() repositories.AnswerRepository         { return &fakeAnswerRepo{f} }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	f.mu.Lock()
	snapshot := f.copyState()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.restoreState(snapshot)
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

type fakeState struct {
	users       map[uint]*models.User
	questions   map[uint]*models.Question
	assignments []*models.QuestionAssignment
	partitions  map[uint]*models.AnswerPartition
	answers     map[uint]*models.Answer

	nextUserID, nextQuestionID, nextAssignmentID, nextPartitionID, nextAnswerID uint
}

func (f *fakeRepository) copyState() fakeState {
	s := fakeState{
		users:            make(map[uint]*models.User, len(f.users)),
		questions:        make(map[uint]*models.Question, len(f.questions)),
		assignments:      append([]*models.QuestionAssignment(nil), f.assignments...),
		partitions:       make(map[uint]*models.AnswerPartition, len(f.partitions)),
		answers:          make(map[uint]*models.Answer, len(f.answers)),
		nextUserID:       f.nextUserID,
		nextQuestionID:   f.nextQuestionID,
		nextAssignmentID: f.nextAssignmentID,
		nextPartitionID:  f.nextPartitionID,
		nextAnswerID:     f.nextAnswerID,
	}
	for k, v := range f.users {
		s.users[k] = v
	}
	for k, v := range f.questions {
		s.questions[k] = v
	}
	for k, v := range f.partitions {
		s.partitions[k] = v
	}
	for k, v := range f.answers {
		s.answers[k] = v
	}
	return s
}

func (f *fakeRepository) restoreState(s fakeState) {
	f.users = s.users
	f.questions = s.questions
	f.assignments = s.assignments
	f.partitions = s.partitions
	f.answers = s.answers
	f.nextUserID = s.nextUserID
	f.nextQuestionID = s.nextQuestionID
	f.nextAssignmentID = s.nextAssignmentID
	f.nextPartitionID = s.nextPartitionID
	f.nextAnswerID = s.nextAnswerID
}

// ===== USER =====

type fakeUserRepo struct{ f *fakeRepository }

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	r.f.nextUserID++
	user.ID = r.f.nextUserID
	r.f.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) ([]*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.User
	for _, u := range r.f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===== QUESTION =====

type fakeQuestionRepo struct{ f *fakeRepository }

func (r *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.nextQuestionID++
	question.ID = r.f.nextQuestionID
	question.CreatedAt = time.Now()
	r.f.questions[question.ID] = question
	return nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	q, ok := r.f.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (r *fakeQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Question
	for _, q := range r.f.questions {
		if filters.CreatedBy != nil && q.CreatedBy != *filters.CreatedBy {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeQuestionRepo) ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	ids := make([]uint, 0, len(r.f.questions))
	for id := range r.f.questions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeQuestionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return int64(len(r.f.questions)), nil
}

// ===== ASSIGNMENT =====

type fakeAssignmentRepo struct{ f *fakeRepository }

func (r *fakeAssignmentRepo) CreateBatch(ctx context.Context, tx *gorm.DB, assignments []*models.QuestionAssignment) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, a := range assignments {
		for _, existing := range r.f.assignments {
			if existing.UserID == a.UserID && existing.QuestionID == a.QuestionID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	for _, a := range assignments {
		r.f.nextAssignmentID++
		a.ID = r.f.nextAssignmentID
		a.AssignedAt = time.Now()
		r.f.assignments = append(r.f.assignments, a)
	}
	return nil
}

func (r *fakeAssignmentRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	return int64(r.f.assignmentCount(userID)), nil
}

func (r *fakeAssignmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.QuestionAssignment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.QuestionAssignment
	for _, a := range r.f.assignments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAssignmentRepo) ExistsForQuestion(ctx context.Context, tx *gorm.DB, userID, questionID uint) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, a := range r.f.assignments {
		if a.UserID == userID && a.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAssignmentRepo) FirstUnanswered(ctx context.Context, tx *gorm.DB, userID, partitionID uint) (*repositories.CurrentAssignment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	answered := make(map[uint]bool)
	for _, ans := range r.f.answers {
		if ans.PartitionID == partitionID {
			answered[ans.QuestionID] = true
		}
	}

	var candidates []*models.QuestionAssignment
	for _, a := range r.f.assignments {
		if a.UserID == userID && !answered[a.QuestionID] {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	first := candidates[0]
	q := r.f.questions[first.QuestionID]
	return &repositories.CurrentAssignment{
		AssignmentID: first.ID,
		Question:     *q,
	}, nil
}

// ===== PARTITION =====

type fakePartitionRepo struct{ f *fakeRepository }

func (r *fakePartitionRepo) Ensure(ctx context.Context, tx *gorm.DB, partition *models.AnswerPartition) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, p := range r.f.partitions {
		if p.UserID == partition.UserID {
			*partition = *p
			return nil
		}
	}
	r.f.nextPartitionID++
	partition.ID = r.f.nextPartitionID
	stored := *partition
	r.f.partitions[stored.ID] = &stored
	return nil
}

func (r *fakePartitionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.AnswerPartition, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, p := range r.f.partitions {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePartitionRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.AnswerPartition, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, p := range r.f.partitions {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ===== ANSWER =====

type fakeAnswerRepo struct{ f *fakeRepository }

func (r *fakeAnswerRepo) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, a := range r.f.answers {
		if a.PartitionID == answer.PartitionID && a.QuestionID == answer.QuestionID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.f.nextAnswerID++
	answer.ID = r.f.nextAnswerID
	answer.SubmittedAt = time.Now()
	if q, ok := r.f.questions[answer.QuestionID]; ok {
		answer.Question = *q
	}
	r.f.answers[answer.ID] = answer
	return nil
}

func (r *fakeAnswerRepo) GetByID(ctx context.Context, tx *gorm.DB, partitionID, answerID uint) (*models.Answer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.answers[answerID]
	if !ok || a.PartitionID != partitionID {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAnswerRepo) ExistsForQuestion(ctx context.Context, tx *gorm.DB, partitionID, questionID uint) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, a := range r.f.answers {
		if a.PartitionID == partitionID && a.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAnswerRepo) ListByPartition(ctx context.Context, tx *gorm.DB, partitionID uint, filters repositories.AnswerFilters) ([]*models.Answer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Answer
	for _, a := range r.f.answers {
		if a.PartitionID != partitionID {
			continue
		}
		if filters.IsReviewed != nil && a.IsReviewed != *filters.IsReviewed {
			continue
		}
		if filters.IsAccepted != nil && a.IsAccepted != *filters.IsAccepted {
			continue
		}
		if a.ReviewedBy != nil {
			a.Reviewer = r.f.users[*a.ReviewedBy]
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeAnswerRepo) Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.answers[answer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.answers[answer.ID] = answer
	return nil
}

func (r *fakeAnswerRepo) ParticipantScores(ctx context.Context, tx *gorm.DB) ([]*repositories.ParticipantScore, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var participants []*models.User
	for _, u := range r.f.users {
		if u.Role == models.RoleParticipant {
			participants = append(participants, u)
		}
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i].ID < participants[j].ID })

	var out []*repositories.ParticipantScore
	for _, u := range participants {
		score := &repositories.ParticipantScore{UserID: u.ID, Username: u.Username}
		var partitionID uint
		for _, p := range r.f.partitions {
			if p.UserID == u.ID {
				partitionID = p.ID
			}
		}
		for _, a := range r.f.answers {
			if a.PartitionID != partitionID || !a.IsAccepted {
				continue
			}
			score.QuestionsSolved++
			if q, ok := r.f.questions[a.QuestionID]; ok {
				score.TotalPoints += q.Points
			}
		}
		out = append(out, score)
	}
	return out, nil
}
