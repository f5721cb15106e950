// Package test provides an in-memory store.Driver for tests.
package test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/curiocodex/curiocodex/store"
)

// MemoryDriver implements store.Driver entirely in memory. Ordering and
// filter semantics mirror the SQL drivers.
type MemoryDriver struct {
	mu sync.Mutex

	users   map[int32]*store.User
	hobbies map[int32]*store.Hobby
	items   map[int32]*store.Item
	nextID  int32

	// Err, when set, is returned by every method. Used to simulate a
	// relational store outage.
	Err error
}

// NewMemoryDriver creates an empty in-memory driver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		users:   make(map[int32]*store.User),
		hobbies: make(map[int32]*store.Hobby),
		items:   make(map[int32]*store.Item),
	}
}

func (d *MemoryDriver) GetDB() *sql.DB { return nil }

func (d *MemoryDriver) Close() error { return nil }

func (d *MemoryDriver) Migrate(context.Context) error { return nil }

func (d *MemoryDriver) allocID() int32 {
	d.nextID++
	return d.nextID
}

func (d *MemoryDriver) CreateUser(_ context.Context, create *store.User) (*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}

	for _, u := range d.users {
		if u.Email == create.Email {
			return nil, errors.New("email already exists")
		}
		if u.Username == create.Username {
			return nil, errors.New("username already exists")
		}
	}

	create.ID = d.allocID()
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	copied := *create
	d.users[create.ID] = &copied
	return create, nil
}

func (d *MemoryDriver) ListUsers(_ context.Context, find *store.FindUser) ([]*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}

	list := []*store.User{}
	for _, u := range d.users {
		if find.ID != nil && u.ID != *find.ID {
			continue
		}
		if find.UID != nil && u.UID != *find.UID {
			continue
		}
		if find.Email != nil && u.Email != *find.Email {
			continue
		}
		if find.Username != nil && u.Username != *find.Username {
			continue
		}
		copied := *u
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (d *MemoryDriver) CreateHobby(_ context.Context, create *store.Hobby) (*store.Hobby, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}

	create.ID = d.allocID()
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}
	if create.Tags == nil {
		create.Tags = []string{}
	}
	copied := *create
	d.hobbies[create.ID] = &copied
	return create, nil
}

func (d *MemoryDriver) ListHobbies(_ context.Context, find *store.FindHobby) ([]*store.Hobby, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}

	uidSet := map[string]bool{}
	for _, uid := range find.UIDs {
		uidSet[uid] = true
	}

	list := []*store.Hobby{}
	for _, h := range d.hobbies {
		if find.ID != nil && h.ID != *find.ID {
			continue
		}
		if find.UID != nil && h.UID != *find.UID {
			continue
		}
		if find.UserID != nil && h.UserID != *find.UserID {
			continue
		}
		if len(uidSet) > 0 && !uidSet[h.UID] {
			continue
		}
		copied := *h
		copied.Tags = append([]string{}, h.Tags...)
		list = append(list, &copied)
	}

	// Newest first, matching the SQL drivers.
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedTs != list[j].CreatedTs {
			return list[i].CreatedTs > list[j].CreatedTs
		}
		return list[i].ID > list[j].ID
	})

	if find.Limit != nil && *find.Limit < len(list) {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *MemoryDriver) UpdateHobby(_ context.Context, update *store.UpdateHobby) (*store.Hobby, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}

	h, ok := d.hobbies[update.ID]
	if !ok {
		return nil, errors.Errorf("hobby %d not found", update.ID)
	}

	if update.Name != nil {
		h.Name = *update.Name
	}
	if update.Description != nil {
		h.Description = *update.Description
	}
	if update.ClearCategory {
		h.Category = nil
	} else if update.Category != nil {
		category := *update.Category
		h.Category = &category
	}
	if update.Tags != nil {
		h.Tags = append([]string{}, update.Tags...)
	}
	if update.UpdatedTs != nil {
		h.UpdatedTs = *update.UpdatedTs
	} else {
		h.UpdatedTs = time.Now().Unix()
	}

	copied := *h
	copied.Tags = append([]string{}, h.Tags...)
	return &copied, nil
}

func (d *MemoryDriver) DeleteHobby(_ context.Context, del *store.DeleteHobby) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}

	for id, item := range d.items {
		if item.HobbyID == del.ID {
			delete(d.items, id)
		}
	}
	delete(d.hobbies, del.ID)
	return nil
}

func (d *MemoryDriver) CreateItem(_ context.Context, create *store.Item) (*store.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}

	if _, ok := d.hobbies[create.HobbyID]; !ok {
		return nil, errors.Errorf("hobby %d not found", create.HobbyID)
	}

	create.ID = d.allocID()
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}
	if create.Tags == nil {
		create.Tags = []string{}
	}
	copied := *create
	d.items[create.ID] = &copied
	return create, nil
}

func (d *MemoryDriver) ListItems(_ context.Context, find *store.FindItem) ([]*store.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}

	uidSet := map[string]bool{}
	for _, uid := range find.UIDs {
		uidSet[uid] = true
	}

	list := []*store.Item{}
	for _, it := range d.items {
		if find.ID != nil && it.ID != *find.ID {
			continue
		}
		if find.UID != nil && it.UID != *find.UID {
			continue
		}
		if find.HobbyID != nil && it.HobbyID != *find.HobbyID {
			continue
		}
		if len(uidSet) > 0 && !uidSet[it.UID] {
			continue
		}
		copied := *it
		copied.Tags = append([]string{}, it.Tags...)
		list = append(list, &copied)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedTs != list[j].CreatedTs {
			return list[i].CreatedTs > list[j].CreatedTs
		}
		return list[i].ID > list[j].ID
	})

	if find.Limit != nil && *find.Limit < len(list) {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *MemoryDriver) UpdateItem(_ context.Context, update *store.UpdateItem) (*store.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}

	it, ok := d.items[update.ID]
	if !ok {
		return nil, errors.Errorf("item %d not found", update.ID)
	}

	if update.Name != nil {
		it.Name = *update.Name
	}
	if update.Description != nil {
		it.Description = *update.Description
	}
	if update.ClearCategory {
		it.Category = nil
	} else if update.Category != nil {
		category := *update.Category
		it.Category = &category
	}
	if update.Tags != nil {
		it.Tags = append([]string{}, update.Tags...)
	}
	if update.ImageRef != nil {
		imageRef := *update.ImageRef
		it.ImageRef = &imageRef
	}
	if update.UpdatedTs != nil {
		it.UpdatedTs = *update.UpdatedTs
	} else {
		it.UpdatedTs = time.Now().Unix()
	}

	copied := *it
	copied.Tags = append([]string{}, it.Tags...)
	return &copied, nil
}

func (d *MemoryDriver) DeleteItem(_ context.Context, del *store.DeleteItem) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	delete(d.items, del.ID)
	return nil
}

// Ensure MemoryDriver implements store.Driver
var _ store.Driver = (*MemoryDriver)(nil)
