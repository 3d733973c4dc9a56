package state

// UserState текущий шаг пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного диалога

	// Регистрация ученика
	StateRegName   UserState = "reg_name"
	StateRegPhone  UserState = "reg_phone"
	StateRegTariff UserState = "reg_tariff"

	// Запись на занятие
	StateBookTransmission UserState = "book_transmission"
	StateBookInstructor   UserState = "book_instructor"
	StateBookDate         UserState = "book_date"
	StateBookTime         UserState = "book_time"
	StateBookDuration     UserState = "book_duration"
	StateBookComment      UserState = "book_comment"
	StateBookConfirm      UserState = "book_confirm"

	// Отмена занятия учеником
	StateCancelPick UserState = "cancel_pick"

	// Отзыв ученика после выставленной оценки
	StateFeedbackWait UserState = "feedback_wait"

	// Блокировка времени инструктором
	StateBlockDate             UserState = "block_date"
	StateBlockStart            UserState = "block_start"
	StateBlockEnd              UserState = "block_end"
	StateBlockReason           UserState = "block_reason"
	StateBlockConflict         UserState = "block_conflict"
	StateBlockRescheduleReason UserState = "block_reschedule_reason"

	// Снятие блокировки
	StateUnblockPick UserState = "unblock_pick"

	// Оценка учеников инструктором
	StateInstructorRatePick     UserState = "irate_pick"
	StateInstructorRateStars    UserState = "irate_stars"
	StateInstructorRateFeedback UserState = "irate_feedback"

	// Выбор нового слота учеником после согласия на перенос
	StateRescheduleDate    UserState = "resched_date"
	StateRescheduleTime    UserState = "resched_time"
	StateRescheduleConfirm UserState = "resched_confirm"
)
