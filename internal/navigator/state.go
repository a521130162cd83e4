package navigator

import "github.com/diewo77/staff-portal/internal/models"

// View is the closed set of portal views.
type View string

const (
	ViewHome            View = "home"
	ViewLogin           View = "login"
	ViewRegister        View = "register"
	ViewPendingApproval View = "pending_approval"
	ViewTaskList        View = "task_list"
	ViewTaskDetail      View = "task_detail"
	ViewCreateTask      View = "create_task"
	ViewRoster          View = "roster"
	ViewRosterEditor    View = "roster_editor"
	ViewAdmin           View = "admin_permissions"
	ViewAccessDenied    View = "access_denied"
)

// State is a view plus the parameter that identifies its content, if any.
type State struct {
	View     View   `json:"view"`
	Category string `json:"category,omitempty"`
	TaskID   uint   `json:"task_id,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Data is everything a view needs to render. Only the fields relevant to the
// state's view are populated; the UI layer never reaches past this into the
// store.
type Data struct {
	Categories []models.Category      `json:"categories,omitempty"`
	Tasks      []models.Task          `json:"tasks,omitempty"`
	Task       *models.Task           `json:"task,omitempty"`
	Comments   []models.Comment       `json:"comments,omitempty"`
	Events     []models.CalendarEvent `json:"events,omitempty"`
	Event      *models.CalendarEvent  `json:"event,omitempty"`
	Users      []DirectoryEntry       `json:"users,omitempty"`
}

// DirectoryEntry is a user as shown in the staff directory. Email is masked
// for viewers without the directory:emails capability.
type DirectoryEntry struct {
	Email       string        `json:"email"`
	DisplayName string        `json:"display_name"`
	Role        models.Role   `json:"role"`
	Status      models.Status `json:"status"`
}
