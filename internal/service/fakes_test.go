package service_test

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/repository"
	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
)

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// fakeLessonStore хранит занятия в памяти и повторяет поведение
// частичных уникальных индексов БД.
type fakeLessonStore struct {
	seq     int64
	lessons map[int64]*model.Lesson
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{lessons: make(map[int64]*model.Lesson)}
}

func (f *fakeLessonStore) Create(_ context.Context, lesson *model.Lesson) error {
	for _, l := range f.lessons {
		if l.Status == model.LessonStatusActive &&
			l.InstructorID == lesson.InstructorID &&
			sameDay(l.Date, lesson.Date) && l.Time == lesson.Time {
			return uniqueViolation()
		}
	}
	f.seq++
	lesson.ID = f.seq
	cp := *lesson
	f.lessons[lesson.ID] = &cp
	return nil
}

func (f *fakeLessonStore) GetByID(_ context.Context, id int64) (*model.Lesson, error) {
	l, ok := f.lessons[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLessonStore) filter(keep func(*model.Lesson) bool) []*model.Lesson {
	var out []*model.Lesson
	for _, l := range f.lessons {
		if keep(l) {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out
}

func (f *fakeLessonStore) GetActiveByInstructorDate(_ context.Context, instructorID int64, date time.Time) ([]*model.Lesson, error) {
	return f.filter(func(l *model.Lesson) bool {
		return l.Status == model.LessonStatusActive && l.InstructorID == instructorID && sameDay(l.Date, date)
	}), nil
}

func (f *fakeLessonStore) GetActiveByStudentDate(_ context.Context, studentTelegramID int64, date time.Time) ([]*model.Lesson, error) {
	return f.filter(func(l *model.Lesson) bool {
		return l.Status == model.LessonStatusActive && l.StudentTelegramID == studentTelegramID && sameDay(l.Date, date)
	}), nil
}

func (f *fakeLessonStore) GetActiveByStudentBetween(_ context.Context, studentTelegramID int64, from, to time.Time) ([]*model.Lesson, error) {
	return f.filter(func(l *model.Lesson) bool {
		return l.Status == model.LessonStatusActive && l.StudentTelegramID == studentTelegramID &&
			!l.Date.Before(from) && !l.Date.After(to)
	}), nil
}

func (f *fakeLessonStore) GetActiveByStudent(_ context.Context, studentTelegramID int64) ([]*model.Lesson, error) {
	return f.filter(func(l *model.Lesson) bool {
		return l.Status == model.LessonStatusActive && l.StudentTelegramID == studentTelegramID
	}), nil
}

func (f *fakeLessonStore) GetActive(_ context.Context) ([]*model.Lesson, error) {
	return f.filter(func(l *model.Lesson) bool {
		return l.Status == model.LessonStatusActive
	}), nil
}

func (f *fakeLessonStore) GetActiveWithoutReminder(_ context.Context, kind repository.ReminderKind) ([]*model.Lesson, error) {
	return f.filter(func(l *model.Lesson) bool {
		if l.Status != model.LessonStatusActive {
			return false
		}
		if kind == repository.Reminder24h {
			return !l.Reminder24hSent
		}
		return !l.Reminder2hSent
	}), nil
}

func (f *fakeLessonStore) GetCompletedUnratedByInstructor(_ context.Context, instructorID int64) ([]*model.Lesson, error) {
	return f.filter(func(l *model.Lesson) bool {
		return l.Status == model.LessonStatusCompleted && l.InstructorID == instructorID && l.InstructorRating == nil
	}), nil
}

func (f *fakeLessonStore) GetCompletedUnratedByStudent(_ context.Context, studentTelegramID int64) (*model.Lesson, error) {
	matches := f.filter(func(l *model.Lesson) bool {
		return l.Status == model.LessonStatusCompleted && l.StudentTelegramID == studentTelegramID && l.Rating == nil
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[len(matches)-1], nil
}

func (f *fakeLessonStore) UpdateFields(_ context.Context, id int64, upd repository.LessonUpdate) error {
	l, ok := f.lessons[id]
	if !ok {
		return nil
	}
	if upd.Date != nil {
		l.Date = *upd.Date
	}
	if upd.Time != nil {
		l.Time = *upd.Time
	}
	if upd.Status != nil {
		l.Status = *upd.Status
	}
	if upd.Rating != nil {
		l.Rating = upd.Rating
	}
	if upd.Feedback != nil {
		l.Feedback = upd.Feedback
	}
	if upd.InstructorRating != nil {
		l.InstructorRating = upd.InstructorRating
	}
	if upd.InstructorFeedback != nil {
		l.InstructorFeedback = upd.InstructorFeedback
	}
	if upd.CancelledBy != nil {
		l.CancelledBy = upd.CancelledBy
	}
	if upd.CancelledAt != nil {
		l.CancelledAt = upd.CancelledAt
	}
	if upd.CompletedAt != nil {
		l.CompletedAt = upd.CompletedAt
	}
	return nil
}

func (f *fakeLessonStore) ClaimReminder(_ context.Context, id int64, kind repository.ReminderKind) (bool, error) {
	l, ok := f.lessons[id]
	if !ok {
		return false, nil
	}
	if kind == repository.Reminder24h {
		if l.Reminder24hSent {
			return false, nil
		}
		l.Reminder24hSent = true
		return true, nil
	}
	if l.Reminder2hSent {
		return false, nil
	}
	l.Reminder2hSent = true
	return true, nil
}

type fakeBlockStore struct {
	seq    int64
	blocks map[int64]*model.ScheduleBlock
}

func newFakeBlockStore() *fakeBlockStore {
	return &fakeBlockStore{blocks: make(map[int64]*model.ScheduleBlock)}
}

func (f *fakeBlockStore) Create(_ context.Context, block *model.ScheduleBlock) error {
	f.seq++
	block.ID = f.seq
	cp := *block
	f.blocks[block.ID] = &cp
	return nil
}

func (f *fakeBlockStore) Delete(_ context.Context, id int64) error {
	delete(f.blocks, id)
	return nil
}

func (f *fakeBlockStore) list(keep func(*model.ScheduleBlock) bool) []*model.ScheduleBlock {
	var out []*model.ScheduleBlock
	for _, b := range f.blocks {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TimeStart < out[j].TimeStart
	})
	return out
}

func (f *fakeBlockStore) GetByInstructorDate(_ context.Context, instructorID int64, date time.Time) ([]*model.ScheduleBlock, error) {
	return f.list(func(b *model.ScheduleBlock) bool {
		return b.InstructorID == instructorID && sameDay(b.Date, date)
	}), nil
}

func (f *fakeBlockStore) GetByInstructor(_ context.Context, instructorID int64) ([]*model.ScheduleBlock, error) {
	return f.list(func(b *model.ScheduleBlock) bool {
		return b.InstructorID == instructorID
	}), nil
}

// fakeRescheduleStore держит ссылку на fakeLessonStore: MarkAccepted
// в БД переписывает занятие в той же транзакции.
type fakeRescheduleStore struct {
	seq      int64
	requests map[int64]*model.RescheduleRequest
	lessons  *fakeLessonStore
}

func newFakeRescheduleStore(lessons *fakeLessonStore) *fakeRescheduleStore {
	return &fakeRescheduleStore{requests: make(map[int64]*model.RescheduleRequest), lessons: lessons}
}

func (f *fakeRescheduleStore) Create(_ context.Context, req *model.RescheduleRequest) error {
	for _, r := range f.requests {
		if r.Status == model.RequestStatusPending && r.StudentTelegramID == req.StudentTelegramID {
			return uniqueViolation()
		}
	}
	f.seq++
	req.ID = f.seq
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeRescheduleStore) GetByUID(_ context.Context, uid uuid.UUID) (*model.RescheduleRequest, error) {
	for _, r := range f.requests {
		if r.UID == uid {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRescheduleStore) GetPendingByStudent(_ context.Context, studentTelegramID int64) (*model.RescheduleRequest, error) {
	for _, r := range f.requests {
		if r.Status == model.RequestStatusPending && r.StudentTelegramID == studentTelegramID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRescheduleStore) MarkRejected(_ context.Context, id int64, respondedAt time.Time) error {
	r := f.requests[id]
	r.Status = model.RequestStatusRejected
	r.RespondedAt = &respondedAt
	return nil
}

func (f *fakeRescheduleStore) MarkAccepted(_ context.Context, id, lessonID int64, newDate time.Time, newTime string, respondedAt time.Time) error {
	r := f.requests[id]
	r.Status = model.RequestStatusAccepted
	r.NewDate = &newDate
	r.NewTime = &newTime
	r.RespondedAt = &respondedAt
	if l, ok := f.lessons.lessons[lessonID]; ok {
		l.Date = newDate
		l.Time = newTime
	}
	return nil
}

type fakeInstructorStore struct {
	seq         int64
	instructors map[int64]*model.Instructor
}

func newFakeInstructorStore() *fakeInstructorStore {
	return &fakeInstructorStore{instructors: make(map[int64]*model.Instructor)}
}

func (f *fakeInstructorStore) Create(_ context.Context, ins *model.Instructor) error {
	// Частичный уникальный индекс: telegram_id = 0 значит "не привязан"
	if ins.TelegramID != 0 {
		for _, other := range f.instructors {
			if other.TelegramID == ins.TelegramID {
				return uniqueViolation()
			}
		}
	}
	f.seq++
	ins.ID = f.seq
	cp := *ins
	f.instructors[ins.ID] = &cp
	return nil
}

func (f *fakeInstructorStore) GetByID(_ context.Context, id int64) (*model.Instructor, error) {
	ins, ok := f.instructors[id]
	if !ok {
		return nil, nil
	}
	cp := *ins
	return &cp, nil
}

func (f *fakeInstructorStore) GetByTelegramID(_ context.Context, telegramID int64) (*model.Instructor, error) {
	for _, ins := range f.instructors {
		if ins.TelegramID == telegramID {
			cp := *ins
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeInstructorStore) GetByName(_ context.Context, name string) (*model.Instructor, error) {
	for _, ins := range f.instructors {
		if ins.Name == name {
			cp := *ins
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeInstructorStore) GetActiveByTransmission(_ context.Context, t model.Transmission) ([]*model.Instructor, error) {
	var out []*model.Instructor
	for _, ins := range f.instructors {
		if ins.IsActive && ins.Transmission == t {
			cp := *ins
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeInstructorStore) GetAllActive(_ context.Context) ([]*model.Instructor, error) {
	var out []*model.Instructor
	for _, ins := range f.instructors {
		if ins.IsActive {
			cp := *ins
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeStudentStore struct {
	seq      int64
	students map[int64]*model.Student // по telegram_id
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{students: make(map[int64]*model.Student)}
}

func (f *fakeStudentStore) Upsert(_ context.Context, st *model.Student) error {
	if existing, ok := f.students[st.TelegramID]; ok {
		existing.Name = st.Name
		existing.Phone = st.Phone
		st.ID = existing.ID
		st.Tariff = existing.Tariff
		st.CreatedAt = existing.CreatedAt
		return nil
	}
	f.seq++
	st.ID = f.seq
	st.CreatedAt = time.Now()
	cp := *st
	f.students[st.TelegramID] = &cp
	return nil
}

func (f *fakeStudentStore) GetByTelegramID(_ context.Context, telegramID int64) (*model.Student, error) {
	st, ok := f.students[telegramID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

type sentMessage struct {
	ChatID   int64
	Text     string
	Keyboard [][]string
}

type fakeNotifier struct {
	sent []sentMessage
}

func (f *fakeNotifier) SendText(_ context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeNotifier) SendChoice(_ context.Context, chatID int64, text string, keyboard [][]string) error {
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text, Keyboard: keyboard})
	return nil
}

func (f *fakeNotifier) textsFor(chatID int64) []string {
	var out []string
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(date time.Time, clock string) time.Time {
	t, err := timegrid.At(date, clock, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}
