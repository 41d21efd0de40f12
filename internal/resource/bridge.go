package resource

// Task is one in-flight fetch (spec §4.5, §6 "Fetcher").
type Task struct {
	QueryUrl string
	Headers  map[string]string

	// Filled in by the bridge on completion (spec §6). Completions arrive
	// from an arbitrary background context; the handler on Cache is
	// non-blocking.
	ContentData     []byte
	ContentType     string
	ReplyCode       int
	ReplyRedirectUrl string
}

// Fetcher is the abstract bridge the core calls to issue fetches and learns
// of completions from (spec §4.5, §6). The HTTP implementation itself is an
// external collaborator (spec §1 non-goal); package fetcherhttp supplies a
// reference implementation.
type Fetcher interface {
	// Start begins a fetch for task.QueryUrl. The fetcher must eventually
	// call the supplied complete callback exactly once, from any goroutine.
	Start(task *Task, complete func(*Task))
}

// AvailabilityTest describes a negative test applied to a completed fetch
// (spec §4.1, §4.5): failure of any configured clause fails the resource.
type AvailabilityTest struct {
	// NegativeCodes: failure if ReplyCode is in this set.
	NegativeCodes map[int]bool
	// NegativeType: failure if ContentType equals this MIME (empty = unset).
	NegativeType string
	// NegativeSize: failure if len(ContentData) <= this size (zero or negative = unset).
	NegativeSize int
}

// Evaluate reports whether the completed task fails this availability test.
func (a *AvailabilityTest) Evaluate(t *Task) bool {
	if a == nil {
		return false
	}
	if a.NegativeCodes != nil && a.NegativeCodes[t.ReplyCode] {
		return true
	}
	if a.NegativeType != "" && t.ContentType == a.NegativeType {
		return true
	}
	if a.NegativeSize > 0 && len(t.ContentData) <= a.NegativeSize {
		return true
	}
	return false
}

const maxRedirects = 5
