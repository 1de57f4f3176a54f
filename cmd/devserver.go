package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nhle/taskapp/internal/devserver"
	"github.com/nhle/taskapp/internal/model"
	tasksync "github.com/nhle/taskapp/internal/sync"
)

func newDevserverCmd(app *app) *cobra.Command {
	var (
		addrs   devserver.Addrs
		publish bool
		seed    []string
		rateMax float64
	)

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory identity, task and notification backend",
		Long:  "devserver serves the three backend contracts from memory on separate ports. With --publish, task writes are announced on the configured broker.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gin.SetMode(gin.ReleaseMode)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := devserver.Options{
				TopicFor:   app.cfg.Broker.TopicFor,
				UsersPath:  app.cfg.Backend.UsersPath,
				LoginRate:  rateMax,
				LoginBurst: 5,
			}
			if publish {
				pub, err := tasksync.NewPublisher(ctx, app.cfg.Broker)
				if err != nil {
					return fmt.Errorf("connect publisher: %w", err)
				}
				defer pub.Close()
				opts.Publisher = pub
			}

			srv := devserver.New(opts)
			if err := seedUsers(srv, seed); err != nil {
				return err
			}
			return srv.Run(ctx, addrs)
		},
	}

	cmd.Flags().StringVar(&addrs.Identity, "identity-addr", ":8080", "identity service listen address")
	cmd.Flags().StringVar(&addrs.Tasks, "tasks-addr", ":8081", "task service listen address")
	cmd.Flags().StringVar(&addrs.Notifications, "notifications-addr", ":8082", "notification service listen address")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish task changes on the configured broker")
	cmd.Flags().Float64Var(&rateMax, "login-rate", 0, "login attempts allowed per second (0 is unlimited)")
	cmd.Flags().StringSliceVar(&seed, "user", nil, "seed an account as name:email:password (repeatable)")
	return cmd
}

func seedUsers(srv *devserver.Server, specs []string) error {
	for _, spec := range specs {
		req, err := parseSeedUser(spec)
		if err != nil {
			return err
		}
		p, err := srv.AddUser(req)
		if err != nil {
			return fmt.Errorf("seed %s: %w", req.Email, err)
		}
		log.Printf("devserver: seeded %s (%s)", p.Email, p.ID)
	}
	return nil
}

func parseSeedUser(spec string) (model.RegisterRequest, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return model.RegisterRequest{}, fmt.Errorf("invalid --user %q: want name:email:password", spec)
	}
	return model.RegisterRequest{Name: parts[0], Email: parts[1], Password: parts[2], Role: model.RoleUser}, nil
}
