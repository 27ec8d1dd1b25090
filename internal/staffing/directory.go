package staffing

import (
	"fmt"
	"sort"
	"sync"
)

func cloneStaff(s *StaffMember) StaffMember {
	c := *s
	if s.Skills != nil {
		c.Skills = append([]string(nil), s.Skills...)
	}
	return c
}

// Directory holds the staff members and vehicles known to the resort.
type Directory struct {
	staff    map[string]*StaffMember
	vehicles map[string]*Vehicle
	mu       sync.RWMutex
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		staff:    make(map[string]*StaffMember),
		vehicles: make(map[string]*Vehicle),
	}
}

// NewDirectoryFromConfig creates a directory seeded with the configured staff
// and vehicles.
func NewDirectoryFromConfig(cfg Config) (*Directory, error) {
	d := NewDirectory()
	for _, s := range cfg.Staff {
		if err := d.Register(s); err != nil {
			return nil, err
		}
	}
	for _, v := range cfg.Vehicles {
		if err := d.RegisterVehicle(v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Register adds or updates a staff member.
func (d *Directory) Register(s StaffMember) error {
	if s.ID == "" {
		return fmt.Errorf("staff id cannot be empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	c := cloneStaff(&s)
	d.staff[s.ID] = &c
	return nil
}

// RegisterVehicle adds or updates a vehicle.
func (d *Directory) RegisterVehicle(v Vehicle) error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id cannot be empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.vehicles[v.ID] = &v
	return nil
}

// Get retrieves a staff member by id.
func (d *Directory) Get(id string) (*StaffMember, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.staff[id]
	if !ok {
		return nil, false
	}
	c := cloneStaff(s)
	return &c, true
}

// List returns every staff member sorted by id.
func (d *Directory) List() []StaffMember {
	return d.filter(func(*StaffMember) bool { return true })
}

// OnDuty returns the staff members currently on duty, sorted by id.
func (d *Directory) OnDuty() []StaffMember {
	return d.filter(func(s *StaffMember) bool { return s.OnDuty })
}

func (d *Directory) filter(keep func(*StaffMember) bool) []StaffMember {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]StaffMember, 0, len(d.staff))
	for _, s := range d.staff {
		if keep(s) {
			out = append(out, cloneStaff(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetOnDuty marks a staff member on or off duty.
func (d *Directory) SetOnDuty(id string, onDuty bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.staff[id]
	if !ok {
		return fmt.Errorf("staff member %q not found", id)
	}
	s.OnDuty = onDuty
	return nil
}

// AvailableVehicles returns the vehicles free for a run, largest first.
func (d *Directory) AvailableVehicles() []Vehicle {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Vehicle, 0, len(d.vehicles))
	for _, v := range d.vehicles {
		if v.Available {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seats != out[j].Seats {
			return out[i].Seats > out[j].Seats
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of staff members.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.staff)
}
