package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ashureev/taskboard/internal/cli/output"
	"github.com/ashureev/taskboard/internal/client"
	"github.com/ashureev/taskboard/internal/domain"
)

// TasksCommand returns the tasks subcommand group.
func TasksCommand() *cli.Command {
	return &cli.Command{
		Name:    "tasks",
		Aliases: []string{"task", "t"},
		Usage:   "Manage tasks",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1, Usage: "Page number"},
					&cli.IntFlag{Name: "limit", Value: client.DefaultPageSize, Usage: "Tasks per page"},
				},
				Action: taskList,
			},
			{
				Name:      "get",
				Usage:     "Show a task",
				ArgsUsage: "TASK_ID",
				Action:    taskGet,
			},
			{
				Name:  "create",
				Usage: "Create a task",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Title", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description", Required: true},
					&cli.StringFlag{Name: "status", Usage: "Pending or Completed", Value: string(domain.StatusPending)},
				},
				Action: taskCreate,
			},
			{
				Name:      "update",
				Aliases:   []string{"edit"},
				Usage:     "Update a task; omitted fields keep their current value",
				ArgsUsage: "TASK_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Title"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description"},
					&cli.StringFlag{Name: "status", Usage: "Pending or Completed"},
				},
				Action: taskUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a task (admins only)",
				ArgsUsage: "TASK_ID",
				Action:    taskDelete,
			},
		},
	}
}

func taskList(c *cli.Context) error {
	rt, err := privateRuntime(c)
	if err != nil {
		return err
	}

	page, limit := c.Int("page"), c.Int("limit")
	result, err := rt.Client.ListTasks(c.Context, page, limit)
	if err != nil {
		return failure(rt, err, client.MessageOr(err, client.FetchTasksFailed))
	}

	if clamped := client.ClampPage(page, result.TotalPages); clamped != page {
		page = clamped
		result, err = rt.Client.ListTasks(c.Context, page, limit)
		if err != nil {
			return failure(rt, err, client.MessageOr(err, client.FetchTasksFailed))
		}
	}

	return render(c, rt, taskPageView{TaskPage: result, Page: page})
}

func taskGet(c *cli.Context) error {
	rt, err := privateRuntime(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := rt.Client.GetTask(c.Context, id)
	if err != nil {
		return failure(rt, err, client.MessageOr(err, client.FetchTaskFailed))
	}
	return render(c, rt, taskView{task})
}

func taskCreate(c *cli.Context) error {
	rt, err := privateRuntime(c)
	if err != nil {
		return err
	}

	in := domain.TaskInput{
		Title:       c.String("title"),
		Description: c.String("description"),
		Status:      domain.TaskStatus(c.String("status")),
	}
	task, err := rt.Client.CreateTask(c.Context, in)
	if err != nil {
		return failure(rt, err, saveMessage(err))
	}
	return render(c, rt, taskView{task})
}

func taskUpdate(c *cli.Context) error {
	rt, err := privateRuntime(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	current, err := rt.Client.GetTask(c.Context, id)
	if err != nil {
		return failure(rt, err, client.MessageOr(err, client.FetchTaskFailed))
	}

	in := current.Input()
	if c.IsSet("title") {
		in.Title = c.String("title")
	}
	if c.IsSet("description") {
		in.Description = c.String("description")
	}
	if c.IsSet("status") {
		in.Status = domain.TaskStatus(c.String("status"))
	}

	task, err := rt.Client.UpdateTask(c.Context, id, in)
	if err != nil {
		return failure(rt, err, saveMessage(err))
	}
	return render(c, rt, taskView{task})
}

func taskDelete(c *cli.Context) error {
	rt, err := privateRuntime(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if !rt.Session.User().CanDeleteTasks() {
		return cli.Exit("error: only admins can delete tasks", 1)
	}

	if err := rt.Client.DeleteTask(c.Context, id); err != nil {
		return failure(rt, err, client.MessageOr(err, client.DeleteTaskFailed))
	}
	fmt.Fprintf(c.App.Writer, "Task %s deleted\n", id)
	return nil
}

func taskID(c *cli.Context) (string, error) {
	if c.NArg() < 1 || c.Args().First() == "" {
		return "", cli.Exit("error: TASK_ID is required", 1)
	}
	return c.Args().First(), nil
}

// saveMessage prefers local validation errors, then the backend message.
func saveMessage(err error) string {
	if errors.Is(err, domain.ErrTitleRequired) || errors.Is(err, domain.ErrDescriptionRequired) || errors.Is(err, domain.ErrInvalidStatus) {
		return err.Error()
	}
	return client.MessageOr(err, client.SaveTaskFailed)
}

type taskView struct {
	*domain.Task
}

func (v taskView) Table() *output.Table {
	t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("id", v.ID)
	t.AddRow("title", v.Title)
	t.AddRow("description", v.Description)
	t.AddRow("status", string(v.Status))
	t.AddRow("created", formatTime(v.CreatedAt))
	return t
}

type taskPageView struct {
	*domain.TaskPage
	Page int `json:"page"`
}

func (v taskPageView) Table() *output.Table {
	t := &output.Table{
		Headers: []string{"ID", "TITLE", "STATUS", "CREATED"},
		Footer:  fmt.Sprintf("Page %d of %d", v.Page, v.TotalPages),
	}
	for _, task := range v.Tasks {
		t.AddRow(task.ID, task.Title, string(task.Status), formatTime(task.CreatedAt))
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
