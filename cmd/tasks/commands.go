package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mauzec/task-manager/internal/api"
	"github.com/mauzec/task-manager/internal/core"
	"github.com/mauzec/task-manager/internal/storage"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

const dateLayout = "2006-01-02"

var errUsage = errors.New("usage error")

type bulkStore interface {
	ListAll(ctx context.Context) ([]core.Task, error)
	ReplaceAll(ctx context.Context, tasks []core.Task) ([]core.Task, error)
}

type app struct {
	client *api.Client
	store  bulkStore
	out    io.Writer
	errOut io.Writer
	// loc reads calendar dates given on the command line.
	loc *time.Location
}

const usageText = `usage: tasks <command> [flags]

commands:
  list    [-status S] [-category C] [-priority P] [-title T] [-from DATE] [-to DATE] [-on DATE] [-sort newest|oldest|priority]
  get     <id>
  create  -title T [-description D] [-category C] [-status S] [-priority P]
  update  <id> [-title T] [-description D] [-category C] [-status S] [-priority P]
  delete  <id>
  import  <file.json>
  export

DATE is YYYY-MM-DD or RFC 3339.
`

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		_, _ = io.WriteString(a.errOut, usageText)
		return exitUsage
	}
	cmd, rest := args[0], args[1:]

	var code int
	var err error
	switch cmd {
	case "list":
		code, err = a.list(ctx, rest)
	case "get":
		code, err = a.get(ctx, rest)
	case "create":
		code, err = a.create(ctx, rest)
	case "update":
		code, err = a.update(ctx, rest)
	case "delete":
		code, err = a.remove(ctx, rest)
	case "import":
		code, err = a.importFile(ctx, rest)
	case "export":
		code, err = a.export(ctx, rest)
	case "help", "-h", "-help", "--help":
		_, _ = io.WriteString(a.out, usageText)
		return exitOK
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if err != nil {
		_, _ = fmt.Fprintf(a.errOut, "tasks %s: %v\n", cmd, err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitFailed
	}
	return code
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) list(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("list")
	status := fs.String("status", "", "only tasks with this status")
	category := fs.String("category", "", "only tasks in this category")
	priority := fs.String("priority", "", "only tasks with this priority")
	title := fs.String("title", "", "title substring, case insensitive")
	from := fs.String("from", "", "created on or after DATE")
	to := fs.String("to", "", "created on or before DATE")
	on := fs.String("on", "", "created on the day of DATE")
	sortMode := fs.String("sort", string(core.SortNewest), "newest, oldest or priority")
	if err := parseFlags(fs, args, 0); err != nil {
		return 0, err
	}

	params := api.ListParams{Filter: core.Filter{Title: *title, Location: a.loc}}
	var err error
	if params.Sort, err = core.ParseSortMode(*sortMode); err != nil {
		return 0, usage(err)
	}
	if *status != "" {
		s, err := core.ParseStatus(*status)
		if err != nil {
			return 0, usage(err)
		}
		params.Filter.Status = &s
	}
	if *category != "" {
		c, err := core.ParseCategory(*category)
		if err != nil {
			return 0, usage(err)
		}
		params.Filter.Category = &c
	}
	if *priority != "" {
		p, err := core.ParsePriority(*priority)
		if err != nil {
			return 0, usage(err)
		}
		params.Filter.Priority = &p
	}
	if params.Filter.From, err = a.parseDate(*from, false); err != nil {
		return 0, err
	}
	if params.Filter.To, err = a.parseDate(*to, true); err != nil {
		return 0, err
	}
	if params.Filter.On, err = a.parseDate(*on, false); err != nil {
		return 0, err
	}

	return printResponse(a.out, a.client.GetAllTasks(ctx, params))
}

func (a *app) get(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("get")
	if err := parseFlags(fs, args, 1); err != nil {
		return 0, err
	}
	return printResponse(a.out, a.client.GetTaskByID(ctx, fs.Arg(0)))
}

func (a *app) create(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("create")
	title := fs.String("title", "", "task title, required")
	description := fs.String("description", "", "free text")
	category := fs.String("category", string(core.CategoryBug), "Bug, Feature, Documentation, Refactor or Test")
	status := fs.String("status", string(core.StatusToDo), "To Do, In Progress or Done")
	priority := fs.String("priority", string(core.PriorityMedium), "Low, Medium or High")
	if err := parseFlags(fs, args, 0); err != nil {
		return 0, err
	}

	d := core.Draft{Title: *title, Description: *description}
	var err error
	if d.Category, err = core.ParseCategory(*category); err != nil {
		return 0, usage(err)
	}
	if d.Status, err = core.ParseStatus(*status); err != nil {
		return 0, usage(err)
	}
	if d.Priority, err = core.ParsePriority(*priority); err != nil {
		return 0, usage(err)
	}
	return printResponse(a.out, a.client.CreateTask(ctx, d))
}

func (a *app) update(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("update")
	fs.String("title", "", "new title")
	fs.String("description", "", "new description")
	fs.String("category", "", "new category")
	fs.String("status", "", "new status")
	fs.String("priority", "", "new priority")
	if err := parseFlags(fs, args, 1); err != nil {
		return 0, err
	}

	var p core.Patch
	var perr error
	// Only flags given on the command line end up in the patch.
	fs.Visit(func(f *flag.Flag) {
		if perr != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "title":
			p.Title = &v
		case "description":
			p.Description = &v
		case "category":
			c, err := core.ParseCategory(v)
			perr = err
			p.Category = &c
		case "status":
			s, err := core.ParseStatus(v)
			perr = err
			p.Status = &s
		case "priority":
			pr, err := core.ParsePriority(v)
			perr = err
			p.Priority = &pr
		}
	})
	if perr != nil {
		return 0, usage(perr)
	}
	return printResponse(a.out, a.client.UpdateTask(ctx, fs.Arg(0), p))
}

func (a *app) remove(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("delete")
	if err := parseFlags(fs, args, 1); err != nil {
		return 0, err
	}
	return printResponse(a.out, a.client.DeleteTask(ctx, fs.Arg(0)))
}

// importFile replaces the whole collection with the array in the file.
func (a *app) importFile(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("import")
	if err := parseFlags(fs, args, 1); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return 0, err
	}
	var tasks []core.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return printResponse(a.out, api.Response[[]core.Task]{Message: "invalid task file: " + err.Error()})
	}

	res, err := a.store.ReplaceAll(ctx, tasks)
	if err != nil {
		msg := "internal error"
		if appErr, ok := core.AsAppError(err); ok {
			msg = appErr.PublicMessage()
		}
		return printResponse(a.out, api.Response[[]core.Task]{Message: msg})
	}
	return printResponse(a.out, api.Response[[]core.Task]{
		Data:    res,
		Success: true,
		Message: "imported " + strconv.Itoa(len(res)) + " tasks",
	})
}

// export prints the collection exactly as it is persisted.
func (a *app) export(ctx context.Context, args []string) (int, error) {
	fs := a.newFlagSet("export")
	if err := parseFlags(fs, args, 0); err != nil {
		return 0, err
	}
	tasks, err := a.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	data, err := storage.EncodeTasks(tasks)
	if err != nil {
		return 0, err
	}
	if _, err := a.out.Write(append(data, '\n')); err != nil {
		return 0, err
	}
	return exitOK, nil
}

func printResponse[T any](w io.Writer, resp api.Response[T]) (int, error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return exitFailed, nil
	}
	return exitOK, nil
}

// parseDate reads YYYY-MM-DD in a.loc or RFC 3339. With endOfDay a bare date
// means the last instant of that day.
func (a *app) parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	loc := a.loc
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, usage(fmt.Errorf("bad date %q, want YYYY-MM-DD or RFC 3339", raw))
	}
	return &t, nil
}

// parseFlags parses args and checks the number of positional arguments.
// A leading id is allowed before the flags, as in "update <id> -title T".
func parseFlags(fs *flag.FlagSet, args []string, positional int) error {
	if positional > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		args = append(append([]string{}, args[1:]...), args[0])
	}
	if err := fs.Parse(args); err != nil {
		return usage(err)
	}
	if fs.NArg() != positional {
		return fmt.Errorf("%w: want %d argument(s), got %d", errUsage, positional, fs.NArg())
	}
	return nil
}

func usage(err error) error {
	return fmt.Errorf("%w: %v", errUsage, err)
}
