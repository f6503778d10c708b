package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"kursus/services/progress-service/config"
	"kursus/services/progress-service/internal/application"
	"kursus/services/progress-service/internal/infrastructure/catalog"
	"kursus/services/progress-service/internal/infrastructure/repository"
	"kursus/services/progress-service/internal/platform/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type env struct {
	cfg config.Config
	db  *gorm.DB
	log *logger.Logger
	out io.Writer
	// asJSON switches output from text lines to JSON documents.
	asJSON bool
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (e *env) print(v interface{}, text string) error {
	if e.asJSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(e.out, text)
	return err
}

func (e *env) progressService(ctx context.Context) (*application.ProgressService, error) {
	courses, err := catalog.Open(ctx, e.cfg, e.db, nil, e.log)
	if err != nil {
		return nil, err
	}
	return application.NewProgressService(repository.NewProgressRepository(e.db), courses, nil, e.log), nil
}

func rootCmd(out io.Writer) *cobra.Command {
	var (
		configPath string
		asJSON     bool
		verbose    bool
		e          = &env{out: out}
	)

	cmd := &cobra.Command{
		Use:   "progressctl",
		Short: "Operate the learner progress and certificate store",
		Long: `Operate the learner progress and certificate store.

Connection settings come from app.env in --config or from the environment
(DB_DRIVER, DB_DSN, DB_HOST, ... as for the server).

Examples:
  progressctl migrate
  progressctl import-catalog --file data/courses.json
  progressctl progress <user-id> nextjs-dasar
  progressctl verify CERT-7K2M9QXA --json
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			e.cfg = cfg
			e.asJSON = asJSON
			e.log = logger.Nop()
			if verbose {
				if e.log, err = logger.New(cfg.LogMode); err != nil {
					return err
				}
			}
			if e.db, err = repository.Open(cfg, e.log); err != nil {
				return fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.close()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing app.env")
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	cmd.AddCommand(
		migrateCmd(e),
		importCatalogCmd(e),
		progressCmd(e),
		verifyCmd(e),
		resetCmd(e),
	)
	return cmd
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the progress, certificate and catalog tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := repository.Migrate(e.db); err != nil {
				return err
			}
			return e.print(map[string]string{"status": "migrated"}, "migrated")
		},
	}
}

func importCatalogCmd(e *env) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-catalog",
		Short: "Copy the course manifest into the database catalog tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = e.cfg.CatalogFile
			}
			fc, err := catalog.NewFileCatalog(file, e.log)
			if err != nil {
				return err
			}
			repo := repository.NewCourseRepository(e.db)
			courses := fc.Courses()
			for _, c := range courses {
				rec := &repository.CourseRecord{ID: c.ID, Title: c.Title, TotalLessons: c.TotalLessons}
				for i, id := range c.LessonIDs {
					rec.Lessons = append(rec.Lessons, repository.LessonRecord{ID: id, SortOrder: i + 1})
				}
				if err := repo.Replace(cmd.Context(), rec); err != nil {
					return fmt.Errorf("import %s: %w", c.ID, err)
				}
			}
			return e.print(map[string]int{"imported": len(courses)}, fmt.Sprintf("imported %d courses", len(courses)))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Manifest path (defaults to CATALOG_FILE)")
	return cmd
}

func progressCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <user-id> [course-id]",
		Short: "Show a learner's progress for one course or all courses",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			svc, err := e.progressService(ctx)
			if err != nil {
				return err
			}

			summaries := []interface{}{}
			var lines []string
			add := func(s summaryView) {
				summaries = append(summaries, s.CourseProgressSummary)
				lines = append(lines, s.String())
			}
			if len(args) == 2 {
				s, err := svc.ComputeCourseProgress(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				add(summaryView{s})
			} else {
				list, err := svc.ListCourseProgress(ctx, args[0])
				if err != nil {
					return err
				}
				for _, s := range list {
					add(summaryView{s})
				}
			}

			if e.asJSON {
				return e.print(summaries, "")
			}
			for _, l := range lines {
				if err := e.print(nil, l); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func verifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <certificate-number>",
		Short: "Look up a certificate by its number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verifier := application.NewVerifierService(repository.NewCertificateRepository(e.db), nil, e.log)
			cert, err := verifier.VerifyByNumber(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if cert == nil {
				return fmt.Errorf("certificate %q not found", args[0])
			}
			return e.print(cert, fmt.Sprintf("%s  %s  %s  %s  issued %s",
				cert.CertificateNumber, cert.UserName, cert.CourseID, cert.CourseTitle,
				cert.IssueDate.Format("2006-01-02")))
		},
	}
}

func resetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <user-id> <course-id>",
		Short: "Delete a learner's lesson completions for a course",
		Long: `Delete a learner's lesson completions for a course.

An issued certificate is not revoked.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			svc, err := e.progressService(ctx)
			if err != nil {
				return err
			}
			if err := svc.ResetCourseProgress(ctx, args[0], args[1]); err != nil {
				return err
			}
			return e.print(map[string]string{"status": "reset"}, "reset "+args[0]+" "+args[1])
		},
	}
}
