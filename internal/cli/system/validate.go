package system

import (
	"fmt"
	"strings"

	"github.com/julianstephens/studymon/internal/cli"
	"github.com/julianstephens/studymon/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	d, err := ctx.Dashboard()
	if err != nil {
		return err
	}

	result := validation.New().ValidateDashboard(d.Subjects(), d.TodayTasks())
	fmt.Fprintln(ctx.Stdout(), strings.TrimRight(result.FormatReport(), "\n"))
	if result.HasErrors() {
		return fmt.Errorf("validation found %d error(s)", result.Count(validation.SeverityError))
	}
	return nil
}
