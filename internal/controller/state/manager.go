package state

import "sync"

// session состояние одного пользователя: шаг диалога и данные,
// накопленные на предыдущих шагах
type session struct {
	state UserState
	data  map[string]interface{}
}

// Manager потокобезопасное хранилище диалоговых состояний в памяти.
// Ключ — telegram ID пользователя. Перезапуск бота сбрасывает диалоги,
// это осознанный компромисс: брони и блокировки живут в БД.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*session)}
}

// Get текущий шаг пользователя
func (m *Manager) Get(telegramID int64) UserState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[telegramID]; ok {
		return s.state
	}
	return StateNone
}

// Set переводит пользователя на шаг state, сохраняя данные диалога.
// StateNone завершает диалог целиком.
func (m *Manager) Set(telegramID int64, state UserState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state == StateNone {
		delete(m.sessions, telegramID)
		return
	}

	s, ok := m.sessions[telegramID]
	if !ok {
		s = &session{data: make(map[string]interface{})}
		m.sessions[telegramID] = s
	}
	s.state = state
}

// SetData запоминает значение шага диалога
func (m *Manager) SetData(telegramID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[telegramID]
	if !ok {
		s = &session{data: make(map[string]interface{})}
		m.sessions[telegramID] = s
	}
	s.data[key] = value
}

// GetString строковое значение из данных диалога
func (m *Manager) GetString(telegramID int64, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[telegramID]; ok {
		v, ok := s.data[key].(string)
		return v, ok
	}
	return "", false
}

// GetInt64 числовое значение из данных диалога
func (m *Manager) GetInt64(telegramID int64, key string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[telegramID]; ok {
		v, ok := s.data[key].(int64)
		return v, ok
	}
	return 0, false
}

// Clear завершает диалог и забывает его данные
func (m *Manager) Clear(telegramID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, telegramID)
}
