package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/toyinv/internal/db"
	"github.com/vbonduro/toyinv/internal/domain"
	"github.com/vbonduro/toyinv/internal/store"
)

// mockGateway is a testify mock of gateway.Gateway.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) List(ctx context.Context) ([]*domain.Toy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Toy), args.Error(1)
}

func (m *mockGateway) Create(ctx context.Context, fields domain.ToyFields) (*domain.Toy, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Toy), args.Error(1)
}

func (m *mockGateway) Update(ctx context.Context, id string, fields domain.ToyFields) (*domain.Toy, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Toy), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func ids(toys []*domain.Toy) []string {
	out := make([]string, 0, len(toys))
	for _, t := range toys {
		out = append(out, t.ID)
	}
	return out
}

func validForm() Form {
	f := NewForm()
	f.Name = "Bear"
	f.Category = domain.CategoryPlushToy
	f.Price = ptr(12.0)
	return f
}

var errGateway = errors.New("gateway down")

func TestRefresh_ReplacesSnapshot(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	gw.On("List", ctx).Return([]*domain.Toy{{ID: "1"}, {ID: "2"}}, nil).Once()
	gw.On("List", ctx).Return([]*domain.Toy{{ID: "3"}}, nil).Once()

	require.NoError(t, app.Refresh(ctx))
	assert.Equal(t, []string{"1", "2"}, ids(app.State().Toys))

	require.NoError(t, app.Refresh(ctx))
	assert.Equal(t, []string{"3"}, ids(app.State().Toys))
	assert.False(t, app.State().Loading)
	gw.AssertExpectations(t)
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	gw.On("List", ctx).Return([]*domain.Toy{{ID: "1"}}, nil).Once()
	gw.On("List", ctx).Return(nil, errGateway).Once()

	require.NoError(t, app.Refresh(ctx))
	err := app.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, errGateway)

	st := app.State()
	assert.Equal(t, []string{"1"}, ids(st.Toys))
	assert.False(t, st.Loading)
	assert.Equal(t, []Notice{{Kind: NoticeError, Message: "Failed to load toys"}}, app.TakeNotices())
}

func TestRefresh_LoadingWhileInFlight(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	var sawLoading bool
	gw.On("List", ctx).Run(func(mock.Arguments) {
		sawLoading = app.State().Loading
	}).Return([]*domain.Toy{}, nil).Once()

	require.NoError(t, app.Refresh(ctx))
	assert.True(t, sawLoading)
	assert.False(t, app.State().Loading)
}

func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	gw.On("List", ctx).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]*domain.Toy{{ID: "old"}}, nil).Once()
	gw.On("List", ctx).Return([]*domain.Toy{{ID: "new"}}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, app.Refresh(ctx))
	}()
	<-started

	require.NoError(t, app.Refresh(ctx))
	assert.True(t, app.State().Loading, "first refresh still in flight")
	close(release)
	wg.Wait()

	st := app.State()
	assert.Equal(t, []string{"new"}, ids(st.Toys))
	assert.False(t, st.Loading)
}

func TestRefresh_StaleFailureDiscarded(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	gw.On("List", ctx).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(nil, errGateway).Once()
	gw.On("List", ctx).Return([]*domain.Toy{{ID: "new"}}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, app.Refresh(ctx), "a failure superseded by a newer refresh is not reported")
	}()
	<-started

	require.NoError(t, app.Refresh(ctx))
	close(release)
	wg.Wait()

	st := app.State()
	assert.Equal(t, []string{"new"}, ids(st.Toys))
	assert.False(t, st.Loading)
	assert.Empty(t, st.Notices)
}

func TestRefresh_RepeatedFailuresEachReported(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	gw.On("List", ctx).Return(nil, errGateway).Twice()

	assert.ErrorIs(t, app.Refresh(ctx), ErrLoad)
	assert.ErrorIs(t, app.Refresh(ctx), ErrLoad)
	assert.Len(t, app.TakeNotices(), 2)
}

func TestOpenForCreate_ResetsForm(t *testing.T) {
	app := NewApp(new(mockGateway), discardLogger())

	app.OpenForCreate()

	d := app.State().Dialog
	assert.True(t, d.Open)
	assert.Equal(t, ModeCreate, d.Mode)
	assert.Empty(t, d.ToyID)
	assert.Equal(t, NewForm(), d.Form)
	assert.True(t, d.Form.InStock)
}

func TestOpenForEdit_PrePopulates(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	car := &domain.Toy{
		ID: "1", Name: "Car", Category: domain.CategoryVehicle, Price: ptr(9.5),
		AgeRange: "3-8 years", Rating: 4, InStock: false, Description: "red",
	}
	gw.On("List", ctx).Return([]*domain.Toy{car}, nil).Once()
	require.NoError(t, app.Refresh(ctx))

	require.NoError(t, app.OpenForEdit("1"))

	d := app.State().Dialog
	assert.True(t, d.Open)
	assert.Equal(t, ModeEdit, d.Mode)
	assert.Equal(t, "1", d.ToyID)
	assert.Equal(t, "Car", d.Form.Name)
	assert.Equal(t, domain.CategoryVehicle, d.Form.Category)
	require.NotNil(t, d.Form.Price)
	assert.Equal(t, 9.5, *d.Form.Price)
	assert.Equal(t, "3-8 years", d.Form.AgeRange)
	require.NotNil(t, d.Form.Rating)
	assert.Equal(t, 4, *d.Form.Rating)
	assert.False(t, d.Form.InStock)
	assert.Equal(t, "red", d.Form.Description)
}

func TestOpenForEdit_UnknownID(t *testing.T) {
	app := NewApp(new(mockGateway), discardLogger())

	err := app.OpenForEdit("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, app.State().Dialog.Open)
}

func TestCancel_ClosesDialog(t *testing.T) {
	app := NewApp(new(mockGateway), discardLogger())

	app.OpenForCreate()
	app.Cancel()

	assert.False(t, app.State().Dialog.Open)
}

func TestSubmit_CreateThenRefresh(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	bear := &domain.Toy{ID: "b", Name: "Bear", Category: domain.CategoryPlushToy, Price: ptr(12.0), InStock: true}
	form := validForm()
	gw.On("Create", ctx, form.Fields()).Return(bear, nil).Once()
	gw.On("List", ctx).Return([]*domain.Toy{bear}, nil).Once()

	app.OpenForCreate()
	require.NoError(t, app.Submit(ctx, form))

	st := app.State()
	assert.False(t, st.Dialog.Open, "dialog closed by completion")
	assert.Equal(t, []string{"b"}, ids(st.Toys))
	assert.Equal(t, []Notice{{Kind: NoticeSuccess, Message: "Toy added successfully!"}}, app.TakeNotices())
	gw.AssertExpectations(t)
	gw.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_EmptyNameDoesNotCreate(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())

	form := validForm()
	form.Name = "   "

	app.OpenForCreate()
	err := app.Submit(context.Background(), form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please enter toy name!", verr.Fields["name"])

	d := app.State().Dialog
	assert.True(t, d.Open)
	assert.Equal(t, "Please enter toy name!", d.Errors["name"])
	gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	gw.AssertNotCalled(t, "List", mock.Anything)
}

func TestSubmit_MissingPriceDoesNotCreate(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())

	form := validForm()
	form.Price = nil

	app.OpenForCreate()
	err := app.Submit(context.Background(), form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please enter price!", verr.Fields["price"])
	assert.True(t, app.State().Dialog.Open)
	gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_EditCallsUpdate(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	car := &domain.Toy{ID: "1", Name: "Car", Category: domain.CategoryVehicle, Price: ptr(9.5), InStock: true}
	gw.On("List", ctx).Return([]*domain.Toy{car}, nil).Once()
	require.NoError(t, app.Refresh(ctx))
	require.NoError(t, app.OpenForEdit("1"))

	form := app.State().Dialog.Form
	form.Name = "Race Car"
	updated := &domain.Toy{ID: "1", Name: "Race Car", Category: domain.CategoryVehicle, Price: ptr(9.5), InStock: true}
	gw.On("Update", ctx, "1", form.Fields()).Return(updated, nil).Once()
	gw.On("List", ctx).Return([]*domain.Toy{updated}, nil).Once()

	require.NoError(t, app.Submit(ctx, form))

	st := app.State()
	assert.False(t, st.Dialog.Open)
	require.Len(t, st.Toys, 1)
	assert.Equal(t, "Race Car", st.Toys[0].Name)
	assert.Equal(t, []Notice{{Kind: NoticeSuccess, Message: "Toy updated successfully!"}}, app.TakeNotices())
	gw.AssertExpectations(t)
	gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_GatewayFailureKeepsDialogOpen(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	form := validForm()
	gw.On("Create", ctx, form.Fields()).Return(nil, errGateway).Once()

	app.OpenForCreate()
	err := app.Submit(ctx, form)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSave)

	d := app.State().Dialog
	assert.True(t, d.Open)
	assert.Equal(t, "Bear", d.Form.Name, "submitted values are kept")
	assert.Equal(t, []Notice{{Kind: NoticeError, Message: "Failed to save toy"}}, app.TakeNotices())
	gw.AssertNotCalled(t, "List", mock.Anything)
}

func TestSubmit_NoDialog(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())

	err := app.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrNoDialog)
	gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_ReopenedDialogStaysOpen(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	form := validForm()
	gw.On("Create", ctx, form.Fields()).Run(func(mock.Arguments) {
		app.OpenForCreate()
	}).Return(&domain.Toy{ID: "b"}, nil).Once()
	gw.On("List", ctx).Return([]*domain.Toy{{ID: "b"}}, nil).Once()

	app.OpenForCreate()
	require.NoError(t, app.Submit(ctx, form))

	assert.True(t, app.State().Dialog.Open)
}

func TestDelete_IssuesSoftDeleteAndOneRefresh(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	gw.On("Update", ctx, "2", domain.ToyFields{Deleted: ptr(true)}).Return(&domain.Toy{ID: "2", Deleted: true}, nil).Once()
	gw.On("List", ctx).Return([]*domain.Toy{{ID: "1"}}, nil).Once()

	require.NoError(t, app.Delete(ctx, "2"))

	gw.AssertExpectations(t)
	gw.AssertNumberOfCalls(t, "Update", 1)
	gw.AssertNumberOfCalls(t, "List", 1)
	assert.Equal(t, []string{"1"}, ids(app.State().Toys))
	assert.Equal(t, []Notice{{Kind: NoticeSuccess, Message: "Toy deleted successfully!"}}, app.TakeNotices())
}

func TestDelete_FailureKeepsToyVisible(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	gw.On("List", ctx).Return([]*domain.Toy{{ID: "1"}, {ID: "2"}}, nil).Once()
	require.NoError(t, app.Refresh(ctx))

	gw.On("Update", ctx, "2", domain.SoftDelete()).Return(nil, errGateway).Once()

	err := app.Delete(ctx, "2")
	assert.ErrorIs(t, err, ErrDelete)
	assert.Equal(t, []string{"1", "2"}, ids(app.State().Toys))
	assert.Equal(t, []Notice{{Kind: NoticeError, Message: "Failed to delete toy"}}, app.TakeNotices())
	gw.AssertNumberOfCalls(t, "List", 1)
}

func TestSubscribe_NotifiedOnChange(t *testing.T) {
	app := NewApp(new(mockGateway), discardLogger())

	var states []State
	unsubscribe := app.Subscribe(func(s State) { states = append(states, s) })

	app.OpenForCreate()
	app.Cancel()
	unsubscribe()
	app.OpenForCreate()

	require.Len(t, states, 2)
	assert.True(t, states[0].Dialog.Open)
	assert.False(t, states[1].Dialog.Open)
	assert.Less(t, states[0].Version, states[1].Version)
}

func TestTakeNotices_Drains(t *testing.T) {
	gw := new(mockGateway)
	app := NewApp(gw, discardLogger())
	ctx := context.Background()

	gw.On("List", ctx).Return(nil, errGateway)
	_ = app.Refresh(ctx)

	assert.Len(t, app.TakeNotices(), 1)
	assert.Empty(t, app.TakeNotices())
}

// The rendered list must equal the collection's live records after every
// successful write.
func TestReloadAfterWrite_MatchesCollection(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	toys := store.NewToyStore(d)
	app := NewApp(toys, discardLogger())
	ctx := context.Background()

	check := func() {
		t.Helper()
		want, err := toys.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, ids(want), ids(app.State().Toys))
	}

	require.NoError(t, app.Refresh(ctx))
	check()

	for _, name := range []string{"Car", "Bear", "Drum"} {
		app.OpenForCreate()
		f := validForm()
		f.Name = name
		require.NoError(t, app.Submit(ctx, f))
		check()
	}

	second := app.State().Toys[1]
	require.NoError(t, app.OpenForEdit(second.ID))
	f := app.State().Dialog.Form
	f.InStock = false
	require.NoError(t, app.Submit(ctx, f))
	check()

	require.NoError(t, app.Delete(ctx, app.State().Toys[0].ID))
	check()

	st := app.State()
	require.Len(t, st.Toys, 2)
	assert.Equal(t, "Bear", st.Toys[0].Name)
	assert.False(t, st.Toys[0].InStock)
	assert.Equal(t, "Drum", st.Toys[1].Name)
}
