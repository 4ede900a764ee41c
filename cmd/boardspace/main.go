package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"boardspace/internal/activity"
	"boardspace/internal/config"
	"boardspace/internal/db"
	"boardspace/internal/domain"
	"boardspace/internal/engine"
	"boardspace/internal/migrate"
	"boardspace/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "boardspace",
	Short: "Boardspace CLI",
	Long: `Boardspace serves the public collaboration surface of published project
boards: issue listings, comments, reactions and votes. Projects become
visible by publishing a deploy board; each board carries its own
comment/reaction/vote capability flags.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("BOARDSPACE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
}

func openDB() (*sql.DB, *config.Config, error) {
	workspace := viper.GetString("workspace")
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(workspace)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, cfg, nil
}

func buildDispatcher(conn *sql.DB, cfg *config.Config) *activity.Dispatcher {
	var sinks []activity.Sink
	for _, s := range cfg.Activity.Sinks {
		switch s.Kind {
		case "store":
			sinks = append(sinks, activity.StoreSink{DB: conn})
		case "webhook":
			sinks = append(sinks, activity.NewWebhookSink(s.URL, s.Secret, time.Duration(s.TimeoutSeconds)*time.Second))
		}
	}
	return activity.NewDispatcher(cfg.Activity.QueueSize, sinks...)
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	conn, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer conn.Close()
	dispatcher := buildDispatcher(conn, cfg)
	defer dispatcher.Close()
	return fn(ctx, engine.New(conn, cfg, dispatcher))
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if basePath != "" {
				cfg.Server.BasePath = basePath
			}
			secret := cfg.Auth.JWTSecret
			if env := os.Getenv("BOARDSPACE_JWT_SECRET"); env != "" {
				secret = env
			}
			if secret == "" {
				return fmt.Errorf("jwt secret is required; set auth.jwt_secret or BOARDSPACE_JWT_SECRET")
			}
			dispatcher := buildDispatcher(conn, cfg)
			defer dispatcher.Close()
			e := engine.New(conn, cfg, dispatcher)
			handler, err := server.New(server.Config{
				Engine:   e,
				BasePath: cfg.Server.BasePath,
				Auth:     server.AuthConfig{JWTSecret: secret},
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Boardspace API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", cfg.Server.Addr, cfg.Server.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (overrides config)")
	return cmd
}

func boardCmd() *cobra.Command {
	board := &cobra.Command{Use: "board", Short: "Manage deploy boards"}
	board.AddCommand(boardPublishCmd())
	board.AddCommand(boardUnpublishCmd())
	board.AddCommand(boardListCmd())
	return board
}

func boardPublishCmd() *cobra.Command {
	var slug, projectID string
	var comments, reactions, votes bool
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a project's deploy board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if slug == "" || projectID == "" {
				return fmt.Errorf("--workspace-slug and --project required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				b, err := e.PublishBoard(ctx, slug, projectID, comments, reactions, votes)
				if err != nil {
					return err
				}
				return printJSONOrBoards([]domain.DeployBoard{b})
			})
		},
	}
	cmd.Flags().StringVar(&slug, "workspace-slug", "", "workspace slug")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().BoolVar(&comments, "comments", false, "enable comments")
	cmd.Flags().BoolVar(&reactions, "reactions", false, "enable reactions")
	cmd.Flags().BoolVar(&votes, "votes", false, "enable votes")
	return cmd
}

func boardUnpublishCmd() *cobra.Command {
	var slug, projectID string
	cmd := &cobra.Command{
		Use:   "unpublish",
		Short: "Remove a project's deploy board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if slug == "" || projectID == "" {
				return fmt.Errorf("--workspace-slug and --project required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if err := e.UnpublishBoard(ctx, slug, projectID); err != nil {
					return err
				}
				fmt.Printf("unpublished %s/%s\n", slug, projectID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&slug, "workspace-slug", "", "workspace slug")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	return cmd
}

func boardListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deploy boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				boards, err := e.ListBoards(ctx)
				if err != nil {
					return err
				}
				return printJSONOrBoards(boards)
			})
		},
	}
	return cmd
}

func printJSONOrBoards(boards []domain.DeployBoard) error {
	if viper.GetBool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(boards)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Workspace", "Project", "Comments", "Reactions", "Votes", "Published"})
	for _, b := range boards {
		tw.AppendRow(table.Row{b.WorkspaceSlug, b.ProjectID, b.CommentsEnabled, b.ReactionsEnabled, b.VotesEnabled, b.CreatedAt})
	}
	tw.Render()
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()
			current, latest, pending, err := migrate.Status(conn)
			if err != nil {
				return err
			}
			fmt.Printf("schema version %d of %d at %s\n", current, latest, db.Path(viper.GetString("workspace")))
			for _, name := range pending {
				fmt.Println("pending:", name)
			}
			return nil
		},
	}
}

// seedCmd loads a demo workspace with a published board and a handful
// of draft issues so the public API has something to serve.
func seedCmd() *cobra.Command {
	var slug string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a demo workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				now := time.Now().UTC().Format(time.RFC3339)
				w := domain.Workspace{ID: uuid.NewString(), Slug: slug, Name: "Demo Workspace", CreatedAt: now}
				if err := e.Repo.InsertWorkspace(ctx, w); err != nil {
					return err
				}
				p := domain.Project{ID: uuid.NewString(), WorkspaceID: w.ID, Name: "Demo Project", CreatedAt: now}
				if err := e.Repo.InsertProject(ctx, p); err != nil {
					return err
				}
				backlog := domain.State{ID: uuid.NewString(), ProjectID: p.ID, Name: "Backlog", Grouping: "backlog"}
				started := domain.State{ID: uuid.NewString(), ProjectID: p.ID, Name: "In Progress", Grouping: "started"}
				for _, s := range []domain.State{backlog, started} {
					if err := e.Repo.InsertState(ctx, s); err != nil {
						return err
					}
				}
				for i, name := range []string{"Collect feedback", "Polish landing page", "Fix signup flow"} {
					stateID := backlog.ID
					if i%2 == 1 {
						stateID = started.ID
					}
					it := domain.Issue{
						ID:          uuid.NewString(),
						WorkspaceID: w.ID,
						ProjectID:   p.ID,
						StateID:     &stateID,
						Name:        name,
						Priority:    "medium",
						SequenceID:  int64(i + 1),
						IsDraft:     true,
						CreatedBy:   "seed",
						CreatedAt:   now,
						UpdatedAt:   now,
					}
					if err := e.Repo.InsertIssue(ctx, it); err != nil {
						return err
					}
				}
				if _, err := e.PublishBoard(ctx, w.Slug, p.ID, true, true, true); err != nil {
					return err
				}
				fmt.Printf("seeded workspace %s with project %s\n", w.Slug, p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&slug, "workspace-slug", "demo", "slug for the seeded workspace")
	return cmd
}
