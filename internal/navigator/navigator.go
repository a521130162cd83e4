// Package navigator owns the portal's view-state machine. Every user action
// comes through Dispatch, which consults the role engine before the domain
// store is ever touched, then computes the next view state and its data.
// The old portal fetched list data first and checked the role afterwards,
// which leaked restricted rows; here authorization always gates the read.
package navigator

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/staff-portal/internal/auth"
	"github.com/diewo77/staff-portal/internal/gate"
	"github.com/diewo77/staff-portal/internal/models"
	"github.com/diewo77/staff-portal/internal/policy"
	"github.com/diewo77/staff-portal/internal/store"
)

// Op is the closed set of dispatchable actions: view requests and mutations.
type Op string

const (
	OpShowHome         Op = "show-home"
	OpShowLogin        Op = "show-login"
	OpShowRegister     Op = "show-register"
	OpShowTaskList     Op = "show-task-list"
	OpShowTaskDetail   Op = "show-task-detail"
	OpShowCreateTask   Op = "show-create-task"
	OpShowRoster       Op = "show-roster"
	OpShowRosterEditor Op = "show-roster-editor"
	OpShowAdmin        Op = "show-admin"

	OpCreateTask     Op = "create-task"
	OpResolveTask    Op = "resolve-task"
	OpDeleteTask     Op = "delete-task"
	OpAddComment     Op = "add-comment"
	OpSaveEvent      Op = "save-event"
	OpDeleteEvent    Op = "delete-event"
	OpCreateCategory Op = "create-category"
	OpRenameCategory Op = "rename-category"
	OpAssignRole     Op = "assign-role"
	OpDeleteUser     Op = "delete-user"
)

// requiredCapability maps each op to the capability that gates it. Ops not
// present require only an approved session.
var requiredCapability = map[Op]gate.Capability{
	OpShowTaskList:     policy.CapCategoryView,
	OpShowTaskDetail:   policy.CapCategoryView,
	OpShowCreateTask:   policy.CapTaskCreate,
	OpShowRosterEditor: policy.CapCalendarEdit,
	OpShowAdmin:        policy.CapAdminView,
	OpCreateTask:       policy.CapTaskCreate,
	OpResolveTask:      policy.CapTaskResolve,
	OpDeleteTask:       policy.CapTaskDelete,
	OpAddComment:       policy.CapCategoryView,
	OpSaveEvent:        policy.CapCalendarEdit,
	OpDeleteEvent:      policy.CapCalendarEdit,
	OpCreateCategory:   policy.CapCategoryManage,
	OpRenameCategory:   policy.CapCategoryManage,
	OpAssignRole:       policy.CapRoleAssign,
	OpDeleteUser:       policy.CapUserDelete,
}

// Action carries one dispatched op and its parameters. Unused fields stay
// zero.
type Action struct {
	Op Op

	Category string
	TaskID   uint
	Date     string

	Title      string
	Details    string
	Importance models.Importance
	AssigneeID *uint
	ImageRef   string

	Message string
	Done    bool

	NewName      string
	RequiredRole string
	SortOrder    int

	Time     string
	Timezone string
	Location string
	Mission  string

	Email  string
	Role   models.Role
	Status models.Status
}

// Store is the slice of the domain store the navigator consumes. Narrow on
// purpose: tests count calls through a fake to prove denied dispatches never
// reach storage.
type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, name string) (*models.Category, error)
	CreateCategory(ctx context.Context, name string, requiredRole *models.Role, sortOrder int) (*models.Category, error)
	RenameCategory(ctx context.Context, oldName, newName string) (*models.Category, error)

	CreateTask(ctx context.Context, in store.TaskInput) (*models.Task, error)
	GetTask(ctx context.Context, id uint) (*models.Task, []models.Comment, error)
	ListTasks(ctx context.Context, category string) ([]models.Task, error)
	SetTaskDone(ctx context.Context, id uint, done bool) (*models.Task, error)
	DeleteTask(ctx context.Context, id uint) error
	AddComment(ctx context.Context, taskID uint, author, message, imageRef string) (*models.Comment, error)

	UpsertCalendarEvent(ctx context.Context, in store.EventInput) (*models.CalendarEvent, error)
	DeleteCalendarEvent(ctx context.Context, date string) error
	GetCalendarEvent(ctx context.Context, date string) (*models.CalendarEvent, error)
	ListCalendarEvents(ctx context.Context) ([]models.CalendarEvent, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, actor, email string, role models.Role, status models.Status) (*models.User, error)
	DeleteUser(ctx context.Context, actor, email string) error
}

type Navigator struct {
	engine *policy.Engine
	store  Store
}

func New(engine *policy.Engine, st Store) *Navigator {
	return &Navigator{engine: engine, store: st}
}

// Initial returns the starting state: login without a session, home with one.
func Initial(sess *auth.Session) State {
	if sess == nil || sess.UserID == 0 {
		return State{View: ViewLogin}
	}
	if sess.Status != models.StatusApproved {
		return State{View: ViewPendingApproval}
	}
	return State{View: ViewHome}
}

// Dispatch runs one action for one session and yields the resulting state.
// Order is fixed: status gate, capability gate, and only then the store.
// A denied capability resolves to AccessDenied, never an error the UI
// has to interpret.
func (n *Navigator) Dispatch(ctx context.Context, sess auth.Session, act Action) (State, *Data, error) {
	// Step 1: a pending account is parked on PendingApproval no matter what
	// it asked for; only the auth views stay reachable.
	if sess.Status != models.StatusApproved {
		switch act.Op {
		case OpShowLogin:
			return State{View: ViewLogin}, &Data{}, nil
		case OpShowRegister:
			return State{View: ViewRegister}, &Data{}, nil
		}
		return State{View: ViewPendingApproval}, &Data{}, nil
	}

	// Step 2: capability gate, before any store access.
	if required, ok := requiredCapability[act.Op]; ok {
		if !n.engine.Can(sess.Role, sess.Status, required) {
			return State{View: ViewAccessDenied}, &Data{}, nil
		}
	}

	// Step 3: run the op against the store and compute the next state.
	switch act.Op {
	case OpShowLogin:
		return State{View: ViewLogin}, &Data{}, nil
	case OpShowRegister:
		return State{View: ViewRegister}, &Data{}, nil
	case OpShowHome:
		return n.showHome(ctx, sess)
	case OpShowTaskList:
		return n.showTaskList(ctx, sess, act.Category)
	case OpShowTaskDetail:
		return n.showTaskDetail(ctx, sess, act.TaskID)
	case OpShowCreateTask:
		return n.showCreateTask(ctx, sess, act.Category)
	case OpShowRoster:
		return n.showRoster(ctx)
	case OpShowRosterEditor:
		return n.showRosterEditor(ctx, act.Date)
	case OpShowAdmin:
		return n.showAdmin(ctx, sess)

	case OpCreateTask:
		// The target category may be role-restricted; that restriction
		// covers writing into it, not just reading it. Checked here so a
		// denied request commits nothing.
		cat, err := n.store.GetCategory(ctx, act.Category)
		if err != nil {
			return State{}, nil, err
		}
		if !n.engine.CanViewCategory(sess.Role, sess.Status, *cat) {
			return State{View: ViewAccessDenied}, &Data{}, nil
		}
		task, err := n.store.CreateTask(ctx, store.TaskInput{
			Category:       act.Category,
			Title:          act.Title,
			Details:        act.Details,
			AssignedUserID: act.AssigneeID,
			Importance:     act.Importance,
			CreatedBy:      sess.Email,
			ImageRef:       act.ImageRef,
		})
		if err != nil {
			return State{}, nil, err
		}
		return n.showTaskDetail(ctx, sess, task.ID)
	case OpResolveTask:
		_, allowed, err := n.taskGate(ctx, sess, act.TaskID)
		if err != nil {
			return State{}, nil, err
		}
		if !allowed {
			return State{View: ViewAccessDenied}, &Data{}, nil
		}
		if _, err := n.store.SetTaskDone(ctx, act.TaskID, act.Done); err != nil {
			return State{}, nil, err
		}
		return n.showTaskDetail(ctx, sess, act.TaskID)
	case OpDeleteTask:
		task, allowed, err := n.taskGate(ctx, sess, act.TaskID)
		if err != nil {
			return State{}, nil, err
		}
		if !allowed {
			return State{View: ViewAccessDenied}, &Data{}, nil
		}
		if err := n.store.DeleteTask(ctx, act.TaskID); err != nil {
			return State{}, nil, err
		}
		return n.showTaskList(ctx, sess, task.CategoryName)
	case OpAddComment:
		_, allowed, err := n.taskGate(ctx, sess, act.TaskID)
		if err != nil {
			return State{}, nil, err
		}
		if !allowed {
			return State{View: ViewAccessDenied}, &Data{}, nil
		}
		if _, err := n.store.AddComment(ctx, act.TaskID, sess.Email, act.Message, act.ImageRef); err != nil {
			return State{}, nil, err
		}
		return n.showTaskDetail(ctx, sess, act.TaskID)

	case OpSaveEvent:
		if _, err := n.store.UpsertCalendarEvent(ctx, store.EventInput{
			Date: act.Date, Time: act.Time, Timezone: act.Timezone,
			Location: act.Location, Mission: act.Mission,
		}); err != nil {
			return State{}, nil, err
		}
		return n.showRosterEditor(ctx, act.Date)
	case OpDeleteEvent:
		if err := n.store.DeleteCalendarEvent(ctx, act.Date); err != nil {
			return State{}, nil, err
		}
		return n.showRoster(ctx)

	case OpCreateCategory:
		var required *models.Role
		if r := models.Role(strings.TrimSpace(act.RequiredRole)); r != "" {
			required = &r
		}
		if _, err := n.store.CreateCategory(ctx, act.Category, required, act.SortOrder); err != nil {
			return State{}, nil, err
		}
		return n.showHome(ctx, sess)
	case OpRenameCategory:
		if _, err := n.store.RenameCategory(ctx, act.Category, act.NewName); err != nil {
			return State{}, nil, err
		}
		return n.showTaskList(ctx, sess, act.NewName)
	case OpAssignRole:
		if _, err := n.store.UpdateUserRole(ctx, sess.Email, act.Email, act.Role, act.Status); err != nil {
			return State{}, nil, err
		}
		return n.showAdmin(ctx, sess)
	case OpDeleteUser:
		if err := n.store.DeleteUser(ctx, sess.Email, act.Email); err != nil {
			return State{}, nil, err
		}
		return n.showAdmin(ctx, sess)
	}
	return State{}, nil, errors.New("unknown op: " + string(act.Op))
}

// categoryAllowed reports whether the session may see the named category.
// Fails closed: a category that is gone or cannot be resolved denies.
func (n *Navigator) categoryAllowed(ctx context.Context, sess auth.Session, name string) (bool, error) {
	cat, err := n.store.GetCategory(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return n.engine.CanViewCategory(sess.Role, sess.Status, *cat), nil
}

// taskGate loads a task and applies the category-scoped visibility rule for
// its category. Every task mutation goes through here before writing.
func (n *Navigator) taskGate(ctx context.Context, sess auth.Session, taskID uint) (*models.Task, bool, error) {
	task, _, err := n.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, false, err
	}
	allowed, err := n.categoryAllowed(ctx, sess, task.CategoryName)
	if err != nil {
		return nil, false, err
	}
	return task, allowed, nil
}

func (n *Navigator) showHome(ctx context.Context, sess auth.Session) (State, *Data, error) {
	cats, err := n.store.ListCategories(ctx)
	if err != nil {
		return State{}, nil, err
	}
	users, err := n.store.ListUsers(ctx)
	if err != nil {
		return State{}, nil, err
	}
	data := &Data{
		Categories: n.engine.VisibleCategories(sess.Role, sess.Status, cats),
		Users:      n.directory(sess, users),
	}
	return State{View: ViewHome}, data, nil
}

func (n *Navigator) showTaskList(ctx context.Context, sess auth.Session, category string) (State, *Data, error) {
	cat, err := n.store.GetCategory(ctx, category)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// placeholder view, not a crash
			return State{View: ViewTaskList, Category: category}, &Data{}, nil
		}
		return State{}, nil, err
	}
	if !n.engine.CanViewCategory(sess.Role, sess.Status, *cat) {
		return State{View: ViewAccessDenied}, &Data{}, nil
	}
	tasks, err := n.store.ListTasks(ctx, category)
	if err != nil {
		return State{}, nil, err
	}
	return State{View: ViewTaskList, Category: category}, &Data{Tasks: tasks}, nil
}

func (n *Navigator) showTaskDetail(ctx context.Context, sess auth.Session, taskID uint) (State, *Data, error) {
	task, comments, err := n.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return State{View: ViewTaskDetail, TaskID: taskID}, &Data{}, nil
		}
		return State{}, nil, err
	}
	// The task's category may be role-restricted; re-check now that the
	// category is known. A category that cannot be resolved denies.
	allowed, err := n.categoryAllowed(ctx, sess, task.CategoryName)
	if err != nil {
		return State{}, nil, err
	}
	if !allowed {
		return State{View: ViewAccessDenied}, &Data{}, nil
	}
	return State{View: ViewTaskDetail, TaskID: taskID}, &Data{Task: task, Comments: comments}, nil
}

func (n *Navigator) showCreateTask(ctx context.Context, sess auth.Session, category string) (State, *Data, error) {
	cats, err := n.store.ListCategories(ctx)
	if err != nil {
		return State{}, nil, err
	}
	data := &Data{Categories: n.engine.VisibleCategories(sess.Role, sess.Status, cats)}
	return State{View: ViewCreateTask, Category: category}, data, nil
}

func (n *Navigator) showRoster(ctx context.Context) (State, *Data, error) {
	evs, err := n.store.ListCalendarEvents(ctx)
	if err != nil {
		return State{}, nil, err
	}
	return State{View: ViewRoster}, &Data{Events: evs}, nil
}

func (n *Navigator) showRosterEditor(ctx context.Context, date string) (State, *Data, error) {
	ev, err := n.store.GetCalendarEvent(ctx, date)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return State{}, nil, err
	}
	// ev stays nil for a fresh date; the editor opens empty.
	return State{View: ViewRosterEditor, Date: date}, &Data{Event: ev}, nil
}

func (n *Navigator) showAdmin(ctx context.Context, sess auth.Session) (State, *Data, error) {
	users, err := n.store.ListUsers(ctx)
	if err != nil {
		return State{}, nil, err
	}
	cats, err := n.store.ListCategories(ctx)
	if err != nil {
		return State{}, nil, err
	}
	return State{View: ViewAdmin}, &Data{Users: n.directory(sess, users), Categories: cats}, nil
}

// directory projects users for display, masking emails unless the viewer
// holds directory:emails.
func (n *Navigator) directory(sess auth.Session, users []models.User) []DirectoryEntry {
	showEmails := n.engine.Can(sess.Role, sess.Status, policy.CapDirectoryEmails)
	out := make([]DirectoryEntry, 0, len(users))
	for _, u := range users {
		email := u.Email
		if !showEmails {
			email = maskEmail(email)
		}
		out = append(out, DirectoryEntry{Email: email, DisplayName: u.DisplayName, Role: u.Role, Status: u.Status})
	}
	return out
}

func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
