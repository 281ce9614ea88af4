// Command scoreauth drives a session Manager from the command line.
//
// Commands run in order within one process, so a miniredis-backed run can
// still exercise a whole lifecycle:
//
//	scoreauth -fake signup a@b.co secret status route "/(auth)/login" logout
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sportae/scoreauth"
	"github.com/sportae/scoreauth/config"
	"github.com/sportae/scoreauth/internal/apitest"
	"github.com/sportae/scoreauth/metrics/export/prometheus"
	"github.com/sportae/scoreauth/navigation"
)

const usage = `usage: scoreauth [flags] command [args] [command [args] ...]

commands:
  status
  login EMAIL PASSWORD
  scorer-login EMAIL PASSWORD
  signup EMAIL PASSWORD
  scorer-signup EMAIL PASSWORD NAME MOBILE COUNTRY_CODE
  update-profile FIELD=VALUE[,FIELD=VALUE...]
  logout
  route PATH
  metrics
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "scoreauth: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("scoreauth", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	var (
		configPath = fs.String("config", "", "env-style config file; defaults to ./.env when present")
		fake       = fs.Bool("fake", false, "serve a local fake auth service and point the client at it")
		fakeSigner = fs.String("fake-signing-key", "", "HS256 key for tokens issued by the fake")
	)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cmds, err := parseCommands(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return errUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	mc := cfg.ManagerConfig()
	if *fake {
		ts, baseURL := apitest.New(apitest.Options{SigningKey: []byte(*fakeSigner)}).Start()
		defer ts.Close()
		mc.API.BaseURL = baseURL
		logger.Info("fake auth service started", zap.String("base_url", baseURL))
	}

	client, cleanup, err := openRedis(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	manager, err := scoreauth.New().
		WithConfig(mc).
		WithRedis(client).
		WithLogger(logger).
		WithAuditSink(scoreauth.NewZapSink(logger)).
		Build()
	if err != nil {
		return fmt.Errorf("build manager: %w", err)
	}
	defer manager.Close()

	restored := manager.Restore(ctx)
	logger.Debug("session restored", zap.Bool("signed_in", restored))

	for _, c := range cmds {
		if err := c.exec(ctx, manager, stdout); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadWithPath(path)
}

func openRedis(cfg *config.Config, logger *zap.Logger) (redis.UniversalClient, func(), error) {
	if cfg.UsesRedis() {
		client := redis.NewClient(cfg.RedisOptions())
		logger.Info("using redis", zap.String("addr", cfg.Redis.Addr))
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	opts := cfg.RedisOptions()
	opts.Addr = mr.Addr()
	client := redis.NewClient(opts)
	logger.Info("using miniredis", zap.String("addr", mr.Addr()))
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

type command struct {
	name string
	args []string
}

var arity = map[string]int{
	"status":         0,
	"login":          2,
	"scorer-login":   2,
	"signup":         2,
	"scorer-signup":  5,
	"update-profile": 1,
	"logout":         0,
	"route":          1,
	"metrics":        0,
}

func parseCommands(args []string) ([]command, error) {
	var out []command
	for len(args) > 0 {
		name := args[0]
		n, ok := arity[name]
		if !ok {
			return nil, fmt.Errorf("unknown command %q", name)
		}
		if len(args) < n+1 {
			return nil, fmt.Errorf("%s needs %d argument(s)", name, n)
		}
		out = append(out, command{name: name, args: args[1 : n+1]})
		args = args[n+1:]
	}
	return out, nil
}

func (c command) exec(ctx context.Context, m *scoreauth.Manager, w io.Writer) error {
	switch c.name {
	case "status":
		printStatus(w, m.State())
	case "login":
		return m.Login(ctx, c.args[0], c.args[1])
	case "scorer-login":
		return m.ScorerLogin(ctx, c.args[0], c.args[1])
	case "signup":
		return m.Signup(ctx, c.args[0], c.args[1])
	case "scorer-signup":
		return m.ScorerSignup(ctx, scoreauth.ScorerSignupRequest{
			Email:        c.args[0],
			Password:     c.args[1],
			Name:         c.args[2],
			MobileNumber: c.args[3],
			CountryCode:  c.args[4],
		})
	case "update-profile":
		update, err := parseProfileUpdate(c.args[0])
		if err != nil {
			return err
		}
		return m.UpdateProfile(ctx, update)
	case "logout":
		m.Logout(ctx)
	case "route":
		d := navigation.Decide(m.State(), navigation.ParseLocation(c.args[0]))
		fmt.Fprintf(w, "%s %s", d.Action, c.args[0])
		if d.Target != "" {
			fmt.Fprintf(w, " -> %s", d.Target)
		}
		fmt.Fprintln(w)
	case "metrics":
		fmt.Fprint(w, prometheus.NewPrometheusExporter(m).Render())
	}
	return nil
}

func printStatus(w io.Writer, s scoreauth.State) {
	if !s.IsAuthenticated() {
		fmt.Fprintln(w, "signed out")
		return
	}
	fmt.Fprintf(w, "signed in as %s (%s) role=%s\n", s.User.Email, s.User.ID, s.User.Role)
}

func parseProfileUpdate(fields string) (scoreauth.ProfileUpdate, error) {
	var p scoreauth.ProfileUpdate
	for _, pair := range strings.Split(fields, ",") {
		field, value, ok := strings.Cut(pair, "=")
		if !ok {
			return p, fmt.Errorf("expected FIELD=VALUE, got %q", pair)
		}
		v := scoreauth.String(value)
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "name":
			p.Name = v
		case "profilepic":
			p.ProfilePic = v
		case "status":
			p.Status = v
		case "fcmtoken":
			p.FCMToken = v
		case "countrycode":
			p.CountryCode = v
		case "address":
			p.Address = v
		default:
			return p, fmt.Errorf("unknown profile field %q", field)
		}
	}
	return p, nil
}
