package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskmaster/tasklist/internal/adapters/repository"
	"github.com/taskmaster/tasklist/internal/application/services"
	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/config"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/infrastructure/server"
	"github.com/taskmaster/tasklist/internal/ports"
)

// Version is overridden at build time with -ldflags
var Version = "dev"

// NewRootCommand assembles the tasklist command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tasklist",
		Short:         "Task list API server",
		Long:          `tasklist serves a small REST API for managing a list of tasks kept in a JSON file or a SQL database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewTaskCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the task API server",
		Long:  "Start the task API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the tasks table for the sqlite, postgres and mysql store drivers (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.OutOrStdout(), "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.OutOrStdout(), "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion(cmd.OutOrStdout())
		},
	})

	return migrateCmd
}

// NewTaskCommand creates the task management command
func NewTaskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
		Long:  "List and edit tasks directly in the configured store",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return withTaskService(cmd.Context(), func(svc *services.TaskService) error {
				tasks, err := svc.ListTasks(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), tasks)
				}
				return printTable(cmd.OutOrStdout(), tasks)
			})
		},
	}
	listCmd.Flags().Bool("json", false, "Print tasks as JSON")

	addCmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ports.CreateTaskRequest{Text: args[0]}
			if cmd.Flags().Changed("details") {
				details, _ := cmd.Flags().GetString("details")
				req.Details = &details
			}
			if cmd.Flags().Changed("status") {
				status, _ := cmd.Flags().GetString("status")
				req.Status = &status
			}

			return withTaskService(cmd.Context(), func(svc *services.TaskService) error {
				task, err := svc.CreateTask(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), task)
			})
		},
	}
	addCmd.Flags().String("details", "", "Task details")
	addCmd.Flags().String("status", entities.DefaultStatus, "Task status")

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Overwrite fields of an existing task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req ports.UpdateTaskRequest
			for name, field := range map[string]**string{
				"text":    &req.Text,
				"details": &req.Details,
				"status":  &req.Status,
			} {
				if cmd.Flags().Changed(name) {
					value, _ := cmd.Flags().GetString(name)
					*field = &value
				}
			}

			return withTaskService(cmd.Context(), func(svc *services.TaskService) error {
				task, err := svc.UpdateTask(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), task)
			})
		},
	}
	updateCmd.Flags().String("text", "", "New task text")
	updateCmd.Flags().String("details", "", "New task details")
	updateCmd.Flags().String("status", "", "New task status")

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTaskService(cmd.Context(), func(svc *services.TaskService) error {
				if err := svc.DeleteTask(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s deleted\n", args[0])
				return nil
			})
		},
	}

	taskCmd.AddCommand(listCmd, addCmd, updateCmd, deleteCmd)
	return taskCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print tasklist version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tasklist %s\n", Version)
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	opened, err := repository.Open(cfg, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to open task store", "error", err, "driver", cfg.Store.Driver)
		return err
	}
	defer opened.Close()

	srv, err := server.New(cfg, opened, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		return err
	}

	if err := srv.InitStore(ctx); err != nil {
		appLogger.Errorw("Failed to initialize task store", "error", err, "driver", cfg.Store.Driver)
		return err
	}

	appLogger.Infow("Starting task API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"store_driver", cfg.Store.Driver,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Errorw("Server failed", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Graceful shutdown failed", "error", err)
		return err
	}

	return <-errCh
}

func openSQLStore() (*repository.Opened, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if !cfg.Store.IsSQL() {
		return nil, errors.New("migrations only apply to the sqlite, postgres and mysql store drivers")
	}

	return repository.Open(cfg, logger.NewNop())
}

func runMigration(out io.Writer, direction string) error {
	opened, err := openSQLStore()
	if err != nil {
		return err
	}
	defer opened.Close()

	changed, err := opened.DB.Migrate(direction)
	if err != nil {
		return err
	}

	if !changed {
		fmt.Fprintln(out, "No migrations to run")
	} else {
		fmt.Fprintf(out, "Migration %s completed successfully\n", direction)
	}
	return nil
}

func showMigrationVersion(out io.Writer) error {
	opened, err := openSQLStore()
	if err != nil {
		return err
	}
	defer opened.Close()

	version, dirty, err := opened.DB.MigrationVersion()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Current migration version: %d\n", version)
	fmt.Fprintf(out, "Dirty: %t\n", dirty)
	return nil
}

// withTaskService opens the configured store, runs fn against a service
// over it and closes the store again
func withTaskService(ctx context.Context, fn func(*services.TaskService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewNop()
	opened, err := repository.Open(cfg, log)
	if err != nil {
		return err
	}
	defer opened.Close()

	if initializer, ok := opened.Store.(ports.Initializer); ok {
		if err := initializer.Init(ctx); err != nil {
			return err
		}
	}

	return fn(services.NewTaskService(opened.Store, log))
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(out io.Writer, tasks []entities.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTEXT\tDETAILS")
	for _, task := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", task.ID, task.Status, task.Text, task.Details)
	}
	return w.Flush()
}
