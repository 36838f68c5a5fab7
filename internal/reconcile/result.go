package reconcile

import "time"

// Failure records one write that did not go through
type Failure struct {
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

// Result summarises the writes of one step or a whole run
type Result struct {
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Unchanged  int       `json:"unchanged"`
	Deleted    int       `json:"deleted"`
	Backfilled int       `json:"backfilled"`
	History    int       `json:"history"`
	Wiped      int       `json:"wiped"`
	Failures   []Failure `json:"failures,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// Writes returns the number of successful store writes
func (r *Result) Writes() int {
	return r.Created + r.Updated + r.Deleted + r.Backfilled + r.History + r.Wiped
}

// Failed reports whether any write failed
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}

func (r *Result) add(o *Result) {
	if o == nil {
		return
	}
	r.Created += o.Created
	r.Updated += o.Updated
	r.Unchanged += o.Unchanged
	r.Deleted += o.Deleted
	r.Backfilled += o.Backfilled
	r.History += o.History
	r.Wiped += o.Wiped
	r.Failures = append(r.Failures, o.Failures...)
}
