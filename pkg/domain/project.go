package domain

import "time"

// Project is a board-owning project as returned by the list endpoint.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Membership is a user's membership in a project.
type Membership struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsOwner bool   `json:"isOwner"`
}

// ProjectDetail is the full project payload: header fields plus tasks and
// memberships, in server-provided order.
type ProjectDetail struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Tasks       []Task       `json:"tasks"`
	Memberships []Membership `json:"memberships"`
}

// Clone returns a deep copy of the detail payload. Optimistic board updates
// are copy-on-write, so cached values are never mutated in place.
func (p *ProjectDetail) Clone() *ProjectDetail {
	if p == nil {
		return nil
	}
	out := *p
	out.Tasks = make([]Task, len(p.Tasks))
	copy(out.Tasks, p.Tasks)
	out.Memberships = make([]Membership, len(p.Memberships))
	copy(out.Memberships, p.Memberships)
	return &out
}
