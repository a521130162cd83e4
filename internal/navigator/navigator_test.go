package navigator_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/staff-portal/internal/auth"
	"github.com/diewo77/staff-portal/internal/models"
	"github.com/diewo77/staff-portal/internal/navigator"
	"github.com/diewo77/staff-portal/internal/policy"
	"github.com/diewo77/staff-portal/internal/store"
)

func setupNavigator(t *testing.T) (*navigator.Navigator, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Task{}, &models.Comment{}, &models.CalendarEvent{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.New(db)
	return navigator.New(policy.NewEngine(), st), st
}

func approvedSession(role models.Role) auth.Session {
	return auth.Session{UserID: 1, Email: "u@x.com", Role: role, Status: models.StatusApproved}
}

func TestInitialState(t *testing.T) {
	if s := navigator.Initial(nil); s.View != navigator.ViewLogin {
		t.Errorf("no session should start at login, got %s", s.View)
	}
	sess := approvedSession(models.RoleMember)
	if s := navigator.Initial(&sess); s.View != navigator.ViewHome {
		t.Errorf("approved session should start at home, got %s", s.View)
	}
	pending := auth.Session{UserID: 2, Status: models.StatusPending, Role: models.RoleMember}
	if s := navigator.Initial(&pending); s.View != navigator.ViewPendingApproval {
		t.Errorf("pending session should start at pending approval, got %s", s.View)
	}
}

func TestPendingForcedToPendingApproval(t *testing.T) {
	nav, _ := setupNavigator(t)
	sess := auth.Session{UserID: 1, Email: "p@x.com", Role: models.RoleSuperAdmin, Status: models.StatusPending}

	for _, op := range []navigator.Op{
		navigator.OpShowHome, navigator.OpShowTaskList, navigator.OpShowAdmin,
		navigator.OpShowRoster, navigator.OpCreateTask, navigator.OpSaveEvent,
	} {
		state, _, err := nav.Dispatch(context.Background(), sess, navigator.Action{Op: op})
		if err != nil {
			t.Fatalf("%s: %v", op, err)
		}
		if state.View != navigator.ViewPendingApproval {
			t.Errorf("%s: pending user should land on pending_approval, got %s", op, state.View)
		}
	}

	// The auth views remain reachable.
	state, _, _ := nav.Dispatch(context.Background(), sess, navigator.Action{Op: navigator.OpShowLogin})
	if state.View != navigator.ViewLogin {
		t.Errorf("login must stay reachable while pending, got %s", state.View)
	}
}

func TestMemberDeniedAdminViews(t *testing.T) {
	nav, _ := setupNavigator(t)
	sess := approvedSession(models.RoleMember)

	for _, op := range []navigator.Op{
		navigator.OpShowAdmin, navigator.OpShowRosterEditor,
		navigator.OpDeleteTask, navigator.OpSaveEvent, navigator.OpDeleteEvent,
		navigator.OpCreateCategory, navigator.OpRenameCategory,
		navigator.OpAssignRole, navigator.OpDeleteUser,
	} {
		state, _, err := nav.Dispatch(context.Background(), sess, navigator.Action{Op: op})
		if err != nil {
			t.Fatalf("%s: %v", op, err)
		}
		if state.View != navigator.ViewAccessDenied {
			t.Errorf("%s: member should be denied, got %s", op, state.View)
		}
	}
}

func TestAccessDeniedCanGoHome(t *testing.T) {
	nav, _ := setupNavigator(t)
	sess := approvedSession(models.RoleMember)

	state, _, _ := nav.Dispatch(context.Background(), sess, navigator.Action{Op: navigator.OpShowAdmin})
	if state.View != navigator.ViewAccessDenied {
		t.Fatalf("expected access denied, got %s", state.View)
	}
	state, _, err := nav.Dispatch(context.Background(), sess, navigator.Action{Op: navigator.OpShowHome})
	if err != nil || state.View != navigator.ViewHome {
		t.Fatalf("home must always be reachable after denial, got %s err=%v", state.View, err)
	}
}

func TestTaskFlowThroughNavigator(t *testing.T) {
	nav, st := setupNavigator(t)
	ctx := context.Background()
	admin := approvedSession(models.RoleAdmin)

	state, _, err := nav.Dispatch(ctx, admin, navigator.Action{Op: navigator.OpCreateCategory, Category: "Ops"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if state.View != navigator.ViewHome {
		t.Errorf("expected home after category create, got %s", state.View)
	}

	state, data, err := nav.Dispatch(ctx, admin, navigator.Action{
		Op: navigator.OpCreateTask, Category: "Ops", Title: "Fix server",
		Details: "restart it", Importance: models.ImportanceHigh,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if state.View != navigator.ViewTaskDetail || data.Task == nil {
		t.Fatalf("expected task detail with task, got %s", state.View)
	}
	taskID := data.Task.ID

	state, data, err = nav.Dispatch(ctx, admin, navigator.Action{Op: navigator.OpAddComment, TaskID: taskID, Message: "on it"})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if len(data.Comments) != 1 || data.Comments[0].Author != "u@x.com" {
		t.Errorf("expected one comment by the session user, got %+v", data.Comments)
	}

	_, data, err = nav.Dispatch(ctx, admin, navigator.Action{Op: navigator.OpResolveTask, TaskID: taskID, Done: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !data.Task.IsDone {
		t.Error("task should be done after resolve")
	}

	state, _, err = nav.Dispatch(ctx, admin, navigator.Action{Op: navigator.OpDeleteTask, TaskID: taskID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if state.View != navigator.ViewTaskList || state.Category != "Ops" {
		t.Errorf("expected task list of Ops after delete, got %+v", state)
	}
	if _, _, err := st.GetTask(ctx, taskID); err == nil {
		t.Error("task should be gone from the store")
	}
}

func TestRestrictedCategoryHiddenFromMember(t *testing.T) {
	nav, st := setupNavigator(t)
	ctx := context.Background()
	adminRole := models.RoleAdmin
	if _, err := st.CreateCategory(ctx, "Command", &adminRole, 0); err != nil {
		t.Fatalf("create category: %v", err)
	}
	task, err := st.CreateTask(ctx, store.TaskInput{Category: "Command", Title: "Secret", Importance: models.ImportanceCritical})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	member := approvedSession(models.RoleMember)
	state, _, err := nav.Dispatch(ctx, member, navigator.Action{Op: navigator.OpShowTaskList, Category: "Command"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if state.View != navigator.ViewAccessDenied {
		t.Errorf("member should not list a restricted category, got %s", state.View)
	}

	state, _, err = nav.Dispatch(ctx, member, navigator.Action{Op: navigator.OpShowTaskDetail, TaskID: task.ID})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if state.View != navigator.ViewAccessDenied {
		t.Errorf("member should not open a task in a restricted category, got %s", state.View)
	}

	_, data, err := nav.Dispatch(ctx, member, navigator.Action{Op: navigator.OpShowHome})
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	for _, c := range data.Categories {
		if c.Name == "Command" {
			t.Error("restricted category leaked into home data")
		}
	}
}

func TestRestrictedCategoryMutationsDenied(t *testing.T) {
	nav, st := setupNavigator(t)
	ctx := context.Background()
	adminRole := models.RoleAdmin
	if _, err := st.CreateCategory(ctx, "Command", &adminRole, 0); err != nil {
		t.Fatalf("create category: %v", err)
	}
	task, err := st.CreateTask(ctx, store.TaskInput{Category: "Command", Title: "Secret", Importance: models.ImportanceCritical})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	member := approvedSession(models.RoleMember)

	state, _, err := nav.Dispatch(ctx, member, navigator.Action{Op: navigator.OpAddComment, TaskID: task.ID, Message: "sneaky"})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if state.View != navigator.ViewAccessDenied {
		t.Errorf("member commenting in a restricted category should be denied, got %s", state.View)
	}
	if _, comments, _ := st.GetTask(ctx, task.ID); len(comments) != 0 {
		t.Errorf("denied comment was persisted: %+v", comments)
	}

	state, _, err = nav.Dispatch(ctx, member, navigator.Action{Op: navigator.OpResolveTask, TaskID: task.ID, Done: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if state.View != navigator.ViewAccessDenied {
		t.Errorf("member resolving in a restricted category should be denied, got %s", state.View)
	}
	if got, _, _ := st.GetTask(ctx, task.ID); got.IsDone {
		t.Error("denied resolve flipped the task")
	}

	state, _, err = nav.Dispatch(ctx, member, navigator.Action{
		Op: navigator.OpCreateTask, Category: "Command", Title: "Intruder", Importance: models.ImportanceLow,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if state.View != navigator.ViewAccessDenied {
		t.Errorf("member creating into a restricted category should be denied, got %s", state.View)
	}
	tasks, err := st.ListTasks(ctx, "Command")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("denied create persisted a task: %+v", tasks)
	}

	// The required role itself stays fully able to work the category.
	state, _, err = nav.Dispatch(ctx, approvedSession(models.RoleAdmin),
		navigator.Action{Op: navigator.OpAddComment, TaskID: task.ID, Message: "ack"})
	if err != nil || state.View != navigator.ViewTaskDetail {
		t.Fatalf("admin comment in own category: view=%s err=%v", state.View, err)
	}
}

func TestTaskWithMissingCategoryFailsClosed(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Task{}, &models.Comment{}, &models.CalendarEvent{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.New(db)
	nav := navigator.New(policy.NewEngine(), st)
	ctx := context.Background()

	if _, err := st.CreateCategory(ctx, "Temp", nil, 0); err != nil {
		t.Fatalf("create category: %v", err)
	}
	task, err := st.CreateTask(ctx, store.TaskInput{Category: "Temp", Title: "Orphan", Importance: models.ImportanceLow})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	// Orphan the task by removing its category row underneath it.
	if err := db.Where("name = ?", "Temp").Delete(&models.Category{}).Error; err != nil {
		t.Fatalf("drop category: %v", err)
	}

	member := approvedSession(models.RoleMember)
	state, data, err := nav.Dispatch(ctx, member, navigator.Action{Op: navigator.OpShowTaskDetail, TaskID: task.ID})
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if state.View != navigator.ViewAccessDenied || data.Task != nil {
		t.Errorf("unresolvable category must deny, got %s task=%+v", state.View, data.Task)
	}

	state, _, err = nav.Dispatch(ctx, member, navigator.Action{Op: navigator.OpResolveTask, TaskID: task.ID, Done: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if state.View != navigator.ViewAccessDenied {
		t.Errorf("mutating a task with an unresolvable category must deny, got %s", state.View)
	}
	if got, _, _ := st.GetTask(ctx, task.ID); got.IsDone {
		t.Error("denied resolve flipped the task")
	}
}

func TestMissingTaskDetailIsPlaceholderNotError(t *testing.T) {
	nav, _ := setupNavigator(t)
	state, data, err := nav.Dispatch(context.Background(), approvedSession(models.RoleMember),
		navigator.Action{Op: navigator.OpShowTaskDetail, TaskID: 404})
	if err != nil {
		t.Fatalf("missing detail should not error, got %v", err)
	}
	if state.View != navigator.ViewTaskDetail || data.Task != nil {
		t.Errorf("expected empty task detail placeholder, got %+v", state)
	}
}

func TestDirectoryEmailMasking(t *testing.T) {
	nav, st := setupNavigator(t)
	ctx := context.Background()
	u := models.User{Email: "alice@x.com", Password: "h", DisplayName: "Alice", Role: models.RoleMember, Status: models.StatusApproved}
	if err := st.CreateUser(ctx, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, data, err := nav.Dispatch(ctx, approvedSession(models.RoleMember), navigator.Action{Op: navigator.OpShowHome})
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if len(data.Users) != 1 {
		t.Fatalf("expected one directory entry, got %d", len(data.Users))
	}
	if data.Users[0].Email == "alice@x.com" || !strings.Contains(data.Users[0].Email, "@x.com") {
		t.Errorf("member should see a masked email, got %s", data.Users[0].Email)
	}

	_, data, err = nav.Dispatch(ctx, approvedSession(models.RoleAdmin), navigator.Action{Op: navigator.OpShowHome})
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if data.Users[0].Email != "alice@x.com" {
		t.Errorf("admin should see the full email, got %s", data.Users[0].Email)
	}
}

func TestRosterEditorFlow(t *testing.T) {
	nav, _ := setupNavigator(t)
	ctx := context.Background()
	admin := approvedSession(models.RoleAdmin)

	// Fresh date opens an empty editor.
	state, data, err := nav.Dispatch(ctx, admin, navigator.Action{Op: navigator.OpShowRosterEditor, Date: "2026-06-01"})
	if err != nil {
		t.Fatalf("editor: %v", err)
	}
	if state.View != navigator.ViewRosterEditor || data.Event != nil {
		t.Fatalf("expected empty editor, got %+v", data.Event)
	}

	_, data, err = nav.Dispatch(ctx, admin, navigator.Action{
		Op: navigator.OpSaveEvent, Date: "2026-06-01", Time: "07:30",
		Timezone: "UTC", Location: "HQ", Mission: "PT",
	})
	if err != nil {
		t.Fatalf("save event: %v", err)
	}
	if data.Event == nil || data.Event.Time != "07:30" {
		t.Fatalf("expected saved event back, got %+v", data.Event)
	}

	state, data, err = nav.Dispatch(ctx, admin, navigator.Action{Op: navigator.OpDeleteEvent, Date: "2026-06-01"})
	if err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if state.View != navigator.ViewRoster || len(data.Events) != 0 {
		t.Errorf("expected empty roster after delete, got %+v", data.Events)
	}
}

func TestAssignRoleThroughNavigator(t *testing.T) {
	nav, st := setupNavigator(t)
	ctx := context.Background()
	u := models.User{Email: "newbie@x.com", Password: "h", Role: models.RoleMember, Status: models.StatusPending}
	if err := st.CreateUser(ctx, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	state, data, err := nav.Dispatch(ctx, approvedSession(models.RoleAdmin), navigator.Action{
		Op: navigator.OpAssignRole, Email: "newbie@x.com",
		Role: models.RoleMember, Status: models.StatusApproved,
	})
	if err != nil {
		t.Fatalf("assign role: %v", err)
	}
	if state.View != navigator.ViewAdmin {
		t.Errorf("expected admin view after assignment, got %s", state.View)
	}
	var found bool
	for _, e := range data.Users {
		if e.Email == "newbie@x.com" && e.Status == models.StatusApproved {
			found = true
		}
	}
	if !found {
		t.Errorf("approved user missing from admin directory: %+v", data.Users)
	}
}
