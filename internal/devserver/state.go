package devserver

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type device struct {
	ID          string
	Fingerprint registerRequest
	Version     int
	// Tokens of the previous version stay valid until PrevUntil.
	PrevUntil time.Time
}

// accepts reports whether a token of version ver is still valid at now.
func (d device) accepts(ver int, now time.Time) bool {
	if ver == d.Version {
		return true
	}
	return ver == d.Version-1 && now.Before(d.PrevUntil)
}

type user struct {
	ID       string `json:"id"`
	Phone    string `json:"phone"`
	Password string `json:"-"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

type post struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Kind     string   `json:"kind,omitempty"`
	Price    int64    `json:"price"`
	Area     float64  `json:"area,omitempty"`
	Address  string   `json:"address,omitempty"`
	Images   []string `json:"images,omitempty"`
	OwnerID  string   `json:"ownerId,omitempty"`
	Created  string   `json:"createdAt,omitempty"`
	Verified bool     `json:"verified,omitempty"`
}

type article struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Published string `json:"publishedAt,omitempty"`
}

type project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Developer string `json:"developer,omitempty"`
	Location  string `json:"location,omitempty"`
	Status    string `json:"status,omitempty"`
}

// memoryState holds everything the backend knows.
type memoryState struct {
	mu       sync.RWMutex
	devices  map[string]*device
	users    map[string]*user // by phone
	posts    []post
	news     []article
	projects []project
	otpSent  map[string]time.Time
	images   int
}

func newMemoryState() *memoryState {
	return &memoryState{
		devices: make(map[string]*device),
		users:   make(map[string]*user),
		otpSent: make(map[string]time.Time),
	}
}

// seed fills the catalogue with demo content and one account.
func (m *memoryState) seed(phone, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := &user{ID: "u-1", Phone: phone, Password: password, FullName: "Demo User", Email: "demo@example.com"}
	m.users[phone] = u

	for i := 1; i <= 12; i++ {
		p := post{
			ID:      fmt.Sprintf("p-%d", i),
			Title:   fmt.Sprintf("Apartment %d, District %d", i, i%7+1),
			Kind:    "apartment",
			Price:   int64(1500+i*125) * 1_000_000,
			Area:    float64(45 + i*5),
			Created: time.Date(2024, 1, i, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
		}
		if i%3 == 0 {
			p.OwnerID = u.ID
			p.Verified = true
		}
		m.posts = append(m.posts, p)
	}
	for i := 1; i <= 7; i++ {
		m.news = append(m.news, article{
			ID:        fmt.Sprintf("n-%d", i),
			Title:     fmt.Sprintf("Market update #%d", i),
			Summary:   "Prices and supply in the city this week.",
			Published: time.Date(2024, 2, i, 7, 30, 0, 0, time.UTC).Format(time.RFC3339),
		})
	}
	for i := 1; i <= 4; i++ {
		m.projects = append(m.projects, project{
			ID:        fmt.Sprintf("pr-%d", i),
			Name:      fmt.Sprintf("Riverside Tower %c", 'A'+i-1),
			Developer: "Saigon Homes",
			Location:  "Thu Duc",
			Status:    []string{"planning", "selling", "building", "handed over"}[i-1],
		})
	}
}

func (m *memoryState) device(id string) (device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[id]
	if !ok {
		return device{}, false
	}
	return *d, true
}

func (m *memoryState) addDevice(d device) {
	m.mu.Lock()
	m.devices[d.ID] = &d
	m.mu.Unlock()
}

// bumpDevice issues a new token version for id. Tokens of the version
// being replaced stay valid for grace, older ones are revoked.
func (m *memoryState) bumpDevice(id string, now time.Time, grace time.Duration) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[id]
	if !ok {
		return 0, false
	}
	d.Version++
	d.PrevUntil = now.Add(grace)
	return d.Version, true
}

func (m *memoryState) userByPhone(phone string) (user, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[phone]
	if !ok {
		return user{}, false
	}
	return *u, true
}

func (m *memoryState) userByID(id string) (user, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == id {
			return *u, true
		}
	}
	return user{}, false
}

func (m *memoryState) updateUser(id string, fn func(*user)) (user, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			fn(u)
			return *u, true
		}
	}
	return user{}, false
}

func (m *memoryState) post(id string) (post, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.posts {
		if p.ID == id {
			return p, true
		}
	}
	return post{}, false
}

func (m *memoryState) postsOf(owner string) []post {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []post
	for _, p := range m.posts {
		if p.OwnerID == owner {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	return out
}

// allowOTP records a send for phone unless one happened within interval.
func (m *memoryState) allowOTP(phone string, now time.Time, interval time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.otpSent[phone]; ok && now.Sub(last) < interval {
		return false
	}
	m.otpSent[phone] = now
	return true
}

func (m *memoryState) nextImage() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images++
	return m.images
}

// window returns the 1-based page of items.
func window[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
