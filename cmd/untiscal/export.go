package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"untiscal/internal/ics"
	appLog "untiscal/internal/log"
	"untiscal/internal/model"
	"untiscal/internal/timetable"
	"untiscal/internal/untisdate"
	"untiscal/internal/web"
)

type exportFlags struct {
	server, school    string
	user, password    string
	classes, subjects string
	rooms             string
	year              int
	start, end        string
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	ef := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the merged timetable of classes, subjects or rooms as iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			src, err := web.DefaultSourceFactory(cfg, loc)(ef.server, ef.school)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := src.Login(ctx, ef.user, ef.password); err != nil {
				return err
			}
			defer func() {
				if err := src.Logout(context.WithoutCancel(ctx)); err != nil {
					appLog.Warn("upstream logout failed", "err", err)
				}
			}()

			periods, err := runExport(ctx, src, ef, loc)
			if err != nil {
				return err
			}
			doc := ics.PeriodCalendar(periods, ics.Options{
				Server:    ef.server,
				School:    ef.school,
				ProductID: cfg.Calendar.ProductID,
			})
			_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&ef.server, "server", "", "WebUntis server host (e.g. demo.webuntis.com)")
	f.StringVar(&ef.school, "school", "", "School name")
	f.StringVar(&ef.user, "user", "", "Username")
	f.StringVar(&ef.password, "password", "", "Password")
	f.StringVar(&ef.classes, "classes", "", "Comma separated class ids")
	f.StringVar(&ef.subjects, "subjects", "", "Comma separated subject ids")
	f.StringVar(&ef.rooms, "rooms", "", "Comma separated room ids")
	f.IntVar(&ef.year, "year", 0, "School year id for --classes (default: current year)")
	f.StringVar(&ef.start, "start", "", "First day, YYYY-MM-DD (default: start of the year)")
	f.StringVar(&ef.end, "end", "", "Last day, YYYY-MM-DD (default: end of the year)")
	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("school")
	_ = cmd.MarkFlagRequired("user")
	cmd.MarkFlagsMutuallyExclusive("classes", "subjects", "rooms")
	cmd.MarkFlagsOneRequired("classes", "subjects", "rooms")
	return cmd
}

func runExport(ctx context.Context, src *timetable.Source, ef *exportFlags, loc *time.Location) ([]model.Period, error) {
	year, err := exportYear(ctx, src, ef.year, loc)
	if err != nil {
		return nil, err
	}

	var refs []model.Reference
	switch {
	case ef.classes != "":
		ids, err := timetable.ParseIDList(ef.classes)
		if err != nil {
			return nil, err
		}
		classes, err := src.ResolveClasses(ctx, year, ids)
		if err != nil {
			return nil, err
		}
		refs = timetable.References(classes, model.ClassRef)
	case ef.subjects != "":
		ids, err := timetable.ParseIDList(ef.subjects)
		if err != nil {
			return nil, err
		}
		subjects, err := src.ResolveSubjects(ctx, ids)
		if err != nil {
			return nil, err
		}
		refs = timetable.References(subjects, model.SubjectRef)
	case ef.rooms != "":
		ids, err := timetable.ParseIDList(ef.rooms)
		if err != nil {
			return nil, err
		}
		rooms, err := src.ResolveRooms(ctx, ids)
		if err != nil {
			return nil, err
		}
		refs = timetable.References(rooms, model.RoomRef)
	default:
		return nil, errors.New("one of --classes, --subjects or --rooms is required")
	}

	start, end := year.StartDate, year.EndDate
	if ef.start != "" {
		if start, err = untisdate.ParseISODate(ef.start, loc); err != nil {
			return nil, err
		}
	}
	if ef.end != "" {
		if end, err = untisdate.ParseISODate(ef.end, loc); err != nil {
			return nil, err
		}
	}

	tt, err := src.Aggregate(ctx, refs, start, end)
	if err != nil {
		return nil, err
	}
	return tt.FindAll(), nil
}

func exportYear(ctx context.Context, src *timetable.Source, id int, loc *time.Location) (model.Year, error) {
	if id > 0 {
		return src.YearByID(ctx, id)
	}
	return src.CurrentYear(ctx, time.Now().In(loc))
}
