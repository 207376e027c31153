package tasks

import (
	"fmt"

	"github.com/julianstephens/studymon/internal/cli"
	"github.com/julianstephens/studymon/internal/models"
)

type TaskAddCmd struct {
	Subject  string       `arg:"" help:"Subject ID or exact name."`
	Category cli.Category `arg:"" help:"Category (writing|learning)."`
	Text     string       `arg:"" help:"Task text."`
}

func (c *TaskAddCmd) Validate() error {
	text, err := cli.RequireText("task text", c.Text)
	if err != nil {
		return err
	}
	c.Text = text
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	d, err := ctx.WritableDashboard()
	if err != nil {
		return err
	}
	subject, err := cli.ResolveSubject(d, c.Subject)
	if err != nil {
		return err
	}
	task, err := d.AddTask(subject.ID, c.Category.Value(), c.Text)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout(), "Added task to %s / %s: %s (ID: %s)\n", subject.Name, c.Category.Value(), task.Text, task.ID)
	return nil
}

type TaskToggleCmd struct {
	Subject  string       `arg:"" help:"Subject ID or exact name."`
	Category cli.Category `arg:"" help:"Category (writing|learning)."`
	Task     string       `arg:"" help:"Task ID or unique ID prefix."`
}

func (c *TaskToggleCmd) Run(ctx *cli.Context) error {
	d, err := ctx.WritableDashboard()
	if err != nil {
		return err
	}
	subject, err := cli.ResolveSubject(d, c.Subject)
	if err != nil {
		return err
	}
	task, err := cli.ResolveTask(subject, c.Category.Value(), c.Task)
	if err != nil {
		return err
	}
	if err := d.ToggleTask(subject.ID, c.Category.Value(), task.ID); err != nil {
		return err
	}
	updated, _ := d.Task(subject.ID, c.Category.Value(), task.ID)
	fmt.Fprintf(ctx.Stdout(), "%s %s\n", cli.Checkbox(updated.Completed), updated.Text)
	return nil
}

type TaskDeleteCmd struct {
	Subject  string       `arg:"" help:"Subject ID or exact name."`
	Category cli.Category `arg:"" help:"Category (writing|learning)."`
	Task     string       `arg:"" help:"Task ID or unique ID prefix."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	d, err := ctx.WritableDashboard()
	if err != nil {
		return err
	}
	subject, err := cli.ResolveSubject(d, c.Subject)
	if err != nil {
		return err
	}
	task, err := cli.ResolveTask(subject, c.Category.Value(), c.Task)
	if err != nil {
		return err
	}
	if err := d.DeleteTask(subject.ID, c.Category.Value(), task.ID); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout(), "Deleted task: %s\n", task.Text)
	if _, ok := d.TodayTask(task.ID); ok {
		fmt.Fprintln(ctx.Stdout(), "Its copy stays in today's plan.")
	}
	return nil
}

type TaskListCmd struct {
	Subject string `arg:"" help:"Subject ID or exact name."`
	ShowIDs bool   `help:"Show full task IDs." name:"show-ids"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	d, err := ctx.Dashboard()
	if err != nil {
		return err
	}
	subject, err := cli.ResolveSubject(d, c.Subject)
	if err != nil {
		return err
	}

	out := ctx.Stdout()
	fmt.Fprintln(out, subject.Name)
	for _, category := range models.Categories {
		fmt.Fprintf(out, "  %s\n", category)
		tasks := subject.Tasks[category]
		if len(tasks) == 0 {
			fmt.Fprintln(out, "    (no tasks)")
			continue
		}
		for _, t := range tasks {
			id := cli.ShortID(t.ID)
			if c.ShowIDs {
				id = t.ID
			}
			fmt.Fprintf(out, "    %s %s  %s\n", cli.Checkbox(t.Completed), id, t.Text)
		}
	}
	return nil
}
