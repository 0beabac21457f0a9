package persistence

import (
	"sync"
	"time"
)

// IdentityMap holds one instance per table and primary key for the lifetime
// of an EntityManager. Entries are never evicted; Clear drops them all.
type IdentityMap struct {
	mu       sync.RWMutex
	entities map[entityKey]*managedEntity
}

type entityKey struct {
	table string
	id    int64
}

// managedEntity is one instance known to the map
type managedEntity struct {
	Entity      interface{}
	LastUsed    time.Time
	AccessCount int64
}

func NewIdentityMap() *IdentityMap {
	return &IdentityMap{entities: make(map[entityKey]*managedEntity)}
}

// Get returns the instance registered for table and id
func (m *IdentityMap) Get(table string, id int64) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.entities[entityKey{table, id}]
	if !exists {
		return nil, false
	}
	e.LastUsed = time.Now()
	e.AccessCount++
	return e.Entity, true
}

// Put registers entity unless an instance is already known for the key
func (m *IdentityMap) Put(table string, id int64, entity interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entityKey{table, id}
	if _, exists := m.entities[key]; exists {
		return
	}
	m.entities[key] = &managedEntity{Entity: entity, LastUsed: time.Now()}
}

func (m *IdentityMap) Contains(table string, id int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.entities[entityKey{table, id}]
	return exists
}

func (m *IdentityMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entities = make(map[entityKey]*managedEntity)
}

// Stats returns the number of managed instances and how often they were hit
func (m *IdentityMap) Stats() (size int, totalAccesses int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size = len(m.entities)
	for _, e := range m.entities {
		totalAccesses += e.AccessCount
	}
	return size, totalAccesses
}
