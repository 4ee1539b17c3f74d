package inventory

import "github.com/vbonduro/toyinv/internal/domain"

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Dialog is the edit form dialog as seen by renderers.
type Dialog struct {
	Open   bool
	Mode   Mode
	ToyID  string
	Form   Form
	Errors map[string]string
}

// Editor owns the dialog state machine:
//
//	Closed -> Open(create)      OpenForCreate
//	Closed -> Open(edit, toy)   OpenForEdit
//	Open   -> Closed            Cancel, successful submit
//	Open   -> Open              failed submit
//
// Opening while open replaces the dialog. Each opening starts a new session
// so a submit that finishes after the dialog was reopened leaves it alone.
type Editor struct {
	dialog  Dialog
	session uint64
}

func (e *Editor) OpenForCreate() {
	e.session++
	e.dialog = Dialog{Open: true, Mode: ModeCreate, Form: NewForm()}
}

func (e *Editor) OpenForEdit(t *domain.Toy) {
	e.session++
	e.dialog = Dialog{Open: true, Mode: ModeEdit, ToyID: t.ID, Form: FormFromToy(t)}
}

func (e *Editor) Cancel() {
	e.session++
	e.dialog = Dialog{}
}

// Dialog returns a copy of the current dialog.
func (e *Editor) Dialog() Dialog {
	d := e.dialog
	if d.Errors != nil {
		errs := make(map[string]string, len(d.Errors))
		for k, v := range d.Errors {
			errs[k] = v
		}
		d.Errors = errs
	}
	return d
}

// keep records the submitted values and their errors on the open dialog.
func (e *Editor) keep(f Form, errs map[string]string) {
	e.dialog.Form = f
	e.dialog.Errors = errs
}

// closeSession closes the dialog if it still belongs to session.
func (e *Editor) closeSession(session uint64) {
	if e.session == session && e.dialog.Open {
		e.Cancel()
	}
}
