package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/proposals/internal/config"
	"github.com/JonMunkholm/proposals/internal/core"
	"github.com/JonMunkholm/proposals/internal/i18n"
	"github.com/JonMunkholm/proposals/internal/logging"
	"github.com/JonMunkholm/proposals/internal/telemetry"
	"github.com/JonMunkholm/proposals/internal/transport"
)

type submitOptions struct {
	formPath string
	attach   string
	lang     string
}

func submitCmd() *cobra.Command {
	var opts submitOptions

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Fill a form from YAML and submit it",
		Example: `  proposalctl submit --form proposal.yaml
  proposalctl submit --form proposal.yaml --attach plan.pdf --lang en-US`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formPath, "form", "f", "", "Form description (YAML)")
	cmd.Flags().StringVarP(&opts.attach, "attach", "a", "", "Attachment file; overrides the form file")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Message language (default from LOCALE_DEFAULT)")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func runSubmit(ctx context.Context, out io.Writer, opts submitOptions) error {
	// A missing .env is fine; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	shutdown, err := telemetry.Setup(ctx, tracingConfig(cfg.Tracing))
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("trace flush failed", "error", err)
		}
	}()

	tr, err := i18n.New(cfg.Locale.Default)
	if err != nil {
		return err
	}
	tag := tr.Match(opts.lang, "")

	backend, err := transport.Open(ctx, cfg, appName)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctrl := core.NewController(backend,
		core.WithPolicy(core.AttachmentPolicy{MaxSize: cfg.Attachment.MaxSize}),
	)
	ctx = core.ContextWithLocale(ctx, tag.String())

	return fillAndSubmit(ctx, out, ctrl, tr, tag, opts)
}

// tracingConfig honors OTEL_SERVICE_NAME and falls back to the binary name.
func tracingConfig(tc config.TracingConfig) telemetry.Config {
	name := tc.ServiceName
	if name == "" {
		name = appName
	}
	return telemetry.Config{Endpoint: tc.Endpoint, ServiceName: name}
}

// fillAndSubmit replays the form file into ctrl and submits it, printing the
// localized outcome.
func fillAndSubmit(ctx context.Context, out io.Writer, ctrl *core.Controller, tr *i18n.Translator, tag language.Tag, opts submitOptions) error {
	ff, err := readFormFile(opts.formPath)
	if err != nil {
		return err
	}
	if opts.attach != "" {
		ff.Attachment = opts.attach
	}

	f, err := replay(ctx, ctrl, ff.events())
	if err != nil {
		printMessage(out, tr, tag, f.Message)
		return err
	}

	if ff.Attachment != "" {
		att, err := core.AttachmentFromPath(ff.Attachment)
		if err != nil {
			return err
		}
		if f = ctrl.SelectAttachment(ctx, att); f.Phase == core.PhaseFailed {
			printMessage(out, tr, tag, f.Message)
			return fmt.Errorf("%w: attachment %s (%s)", errRejected, att.Name, f.Message.Code)
		}
	}

	f = ctrl.Submit(ctx)
	printMessage(out, tr, tag, f.Message)
	if f.Phase != core.PhaseSucceeded {
		return fmt.Errorf("submission failed (%s)", f.Message.Code)
	}
	return nil
}

func printMessage(out io.Writer, tr *i18n.Translator, tag language.Tag, m core.UserMessage) {
	if m.IsZero() {
		return
	}
	fmt.Fprintf(out, "%s\n%s: %s\n", tr.Message(tag, m), tr.Text(tag, i18n.KeyAlertCode), m.Code)
}
