package dynamo

// Recorder is the bookkeeping half of a Method: its name, its trace and the
// log destination its LogInterim/LogResult write to. Methods embed it.
type Recorder struct {
	name    string
	columns []string
	trace   *Trace
	Log     RunLog
}

func NewRecorder(name string, log RunLog, columns ...string) Recorder {
	if log == nil {
		log = NopLog{}
	}
	return Recorder{
		name:    name,
		columns: columns,
		trace:   NewTrace(columns...),
		Log:     log,
	}
}

func (r *Recorder) Name() string { return r.name }

// RecordInitial starts a fresh trace with x as step 0.
func (r *Recorder) RecordInitial(x State) {
	r.trace = NewTrace(r.columns...)
	r.trace.Append(0, x)
}

func (r *Recorder) RecordStep(step int, x State) {
	r.trace.Append(step, x)
}

func (r *Recorder) Trace() *Trace { return r.trace }
