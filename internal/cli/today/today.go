package today

import (
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/studymon/internal/cli"
	"github.com/julianstephens/studymon/internal/dashboard"
)

type TodayListCmd struct {
	ShowIDs bool `help:"Show full task IDs." name:"show-ids"`
}

func (c *TodayListCmd) Run(ctx *cli.Context) error {
	d, err := ctx.Dashboard()
	if err != nil {
		return err
	}

	out := ctx.Stdout()
	tasks := d.TodayTasks()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "Nothing planned for today.")
		return nil
	}

	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
		id := cli.ShortID(t.ID)
		if c.ShowIDs {
			id = t.ID
		}
		fmt.Fprintf(out, "%s %s  %s  (%s / %s)\n", cli.Checkbox(t.Completed), id, t.Text, t.SubjectName, t.Category)
	}
	fmt.Fprintf(out, "\n%d/%d done\n", done, len(tasks))
	return nil
}

type TodayAddCmd struct {
	Subject  string       `arg:"" help:"Subject ID or exact name."`
	Category cli.Category `arg:"" help:"Category (writing|learning)."`
	Task     string       `arg:"" help:"Task ID or unique ID prefix."`
}

func (c *TodayAddCmd) Run(ctx *cli.Context) error {
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

	if _, ok := d.TodayTask(task.ID); ok {
		fmt.Fprintf(ctx.Stdout(), "Already in today's plan: %s\n", task.Text)
		return nil
	}
	if err := d.TransferToToday(task, subject.ID, subject.Name, c.Category.Value()); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout(), "Added to today: %s\n", task.Text)
	return nil
}

type TodayToggleCmd struct {
	ID string `arg:"" help:"Today task ID or unique ID prefix."`
}

func (c *TodayToggleCmd) Run(ctx *cli.Context) error {
	d, err := ctx.WritableDashboard()
	if err != nil {
		return err
	}
	t, err := cli.ResolveTodayTask(d, c.ID)
	if err != nil {
		return err
	}
	if err := d.ToggleTodayTask(t.ID); err != nil {
		return err
	}
	updated, _ := d.TodayTask(t.ID)
	fmt.Fprintf(ctx.Stdout(), "%s %s\n", cli.Checkbox(updated.Completed), updated.Text)
	return nil
}

type TodayDeleteCmd struct {
	ID string `arg:"" help:"Today task ID or unique ID prefix."`
}

func (c *TodayDeleteCmd) Run(ctx *cli.Context) error {
	d, err := ctx.WritableDashboard()
	if err != nil {
		return err
	}
	t, err := cli.ResolveTodayTask(d, c.ID)
	if err != nil {
		return err
	}
	if err := d.DeleteTodayTask(t.ID); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout(), "Removed from today: %s\n", t.Text)
	return nil
}

// TodayPickCmd prints the transfer payload for a task without committing it.
type TodayPickCmd struct {
	Subject  string       `arg:"" help:"Subject ID or exact name."`
	Category cli.Category `arg:"" help:"Category (writing|learning)."`
	Task     string       `arg:"" help:"Task ID or unique ID prefix."`
}

func (c *TodayPickCmd) Run(ctx *cli.Context) error {
	d, err := ctx.Dashboard()
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
	payload, err := dashboard.PickUp(task, subject, c.Category.Value())
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Stdout(), payload.String())
	return nil
}

// TodayDropCmd commits a payload produced by 'today pick'. Invalid payloads
// are ignored.
type TodayDropCmd struct {
	Payload string `help:"Payload JSON. Read from stdin when omitted."`
}

func (c *TodayDropCmd) Run(ctx *cli.Context) error {
	data := []byte(c.Payload)
	if c.Payload == "" {
		var err error
		data, err = io.ReadAll(ctx.Stdin())
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
	}
	data = []byte(strings.TrimSpace(string(data)))

	d, err := ctx.WritableDashboard()
	if err != nil {
		return err
	}
	before := len(d.TodayTasks())
	if err := d.Drop(data); err != nil {
		return err
	}
	if len(d.TodayTasks()) > before {
		added := d.TodayTasks()[before]
		fmt.Fprintf(ctx.Stdout(), "Added to today: %s\n", added.Text)
	} else {
		fmt.Fprintln(ctx.Stdout(), "Nothing added.")
	}
	return nil
}
