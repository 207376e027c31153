package subjects

import (
	"fmt"

	"github.com/julianstephens/studymon/internal/cli"
)

type SubjectAddCmd struct {
	Name string `arg:"" help:"Subject name."`
}

func (c *SubjectAddCmd) Validate() error {
	name, err := cli.RequireText("subject name", c.Name)
	if err != nil {
		return err
	}
	c.Name = name
	return nil
}

func (c *SubjectAddCmd) Run(ctx *cli.Context) error {
	d, err := ctx.WritableDashboard()
	if err != nil {
		return err
	}
	subject, err := d.AddSubject(c.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout(), "Added subject: %s (ID: %s)\n", subject.Name, subject.ID)
	return nil
}

type SubjectDeleteCmd struct {
	Subject string `arg:"" help:"Subject ID or exact name."`
}

func (c *SubjectDeleteCmd) Run(ctx *cli.Context) error {
	d, err := ctx.WritableDashboard()
	if err != nil {
		return err
	}
	subject, err := cli.ResolveSubject(d, c.Subject)
	if err != nil {
		return err
	}
	if err := d.DeleteSubject(subject.ID); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "Deleted subject: %s\n", subject.Name)
	kept := 0
	for _, t := range d.TodayTasks() {
		if t.SubjectID == subject.ID {
			kept++
		}
	}
	if kept > 0 {
		fmt.Fprintf(ctx.Stdout(), "%d task(s) from this subject stay in today's plan.\n", kept)
	}
	return nil
}

type SubjectListCmd struct {
	ShowIDs bool `help:"Show subject IDs." name:"show-ids"`
}

func (c *SubjectListCmd) Run(ctx *cli.Context) error {
	d, err := ctx.Dashboard()
	if err != nil {
		return err
	}

	subjects := d.Subjects()
	out := ctx.Stdout()
	if len(subjects) == 0 {
		fmt.Fprintln(out, "No subjects yet. Add one with 'studymon subject add NAME'.")
		return nil
	}

	for _, s := range subjects {
		total, done := s.TaskCount()
		if c.ShowIDs {
			fmt.Fprintf(out, "%s  %s  (%d/%d done)\n", s.ID, s.Name, done, total)
		} else {
			fmt.Fprintf(out, "%s  (%d/%d done)\n", s.Name, done, total)
		}
	}
	return nil
}
