package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/sovereign-client/internal/factory"
	"github.com/mcoot/sovereign-client/internal/messages"
	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/transport"
)

func newMessagesCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Direct messages",
	}

	cmd.AddCommand(newInboxCmd(r))
	cmd.AddCommand(newSentCmd(r))
	cmd.AddCommand(newReadCmd(r))
	cmd.AddCommand(newSendCmd(r))
	cmd.AddCommand(newReplyCmd(r))
	cmd.AddCommand(newDeleteCmd(r))
	cmd.AddCommand(newReportCmd(r))
	cmd.AddCommand(newAttachmentCmd(r))

	return cmd
}

func newInboxCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "List received messages and mark them read",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				msgs, err := app.Messages.ListInbox(cmd.Context())
				if err != nil && msgs == nil {
					return err
				}
				r.out(cmd).Print(MessageList{Box: "inbox", Messages: msgs})
				return err
			})
		},
	}
}

func newSentCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "sent",
		Short: "List sent messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				msgs, err := app.Messages.ListSent(cmd.Context())
				if err != nil {
					return err
				}
				r.out(cmd).Print(MessageList{Box: "sent", Messages: msgs})
				return nil
			})
		},
	}
}

func newReadCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Show one message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				msg, err := loadMessage(cmd, app, id)
				if err != nil {
					return err
				}
				r.out(cmd).Print(msg)
				return nil
			})
		},
	}
}

func newSendCmd(r *runner) *cobra.Command {
	var to, subject, body, attach string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to another pilot",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := messages.Draft{To: to, Subject: subject, Body: body}
			if attach != "" {
				upload, err := readUpload(attach)
				if err != nil {
					return err
				}
				draft.Attachment = upload
			}
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				res, err := app.Messages.Send(cmd.Context(), draft)
				if err != nil {
					return err
				}
				r.out(cmd).Print(res)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient username (required)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject")
	cmd.Flags().StringVar(&body, "body", "", "Message body (required)")
	cmd.Flags().StringVar(&attach, "attach", "", "File to attach")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}

func newReplyCmd(r *runner) *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "reply <id>",
		Short: "Reply to a message, quoting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				original, err := loadMessage(cmd, app, id)
				if err != nil {
					return err
				}
				res, err := app.Messages.Send(cmd.Context(), app.Messages.Reply(original, body))
				if err != nil {
					return err
				}
				r.out(cmd).Print(res)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&body, "body", "", "Reply text placed above the quote (required)")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}

func newDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a message from your view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				if err := app.Messages.Delete(cmd.Context(), id); err != nil {
					return err
				}
				r.out(cmd).PrintMessage(fmt.Sprintf("Message %d deleted.", id))
				return nil
			})
		},
	}
}

func newReportCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "report <id>",
		Short: "Report a message to the administrators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				if err := app.Messages.Report(cmd.Context(), id); err != nil {
					return err
				}
				r.out(cmd).PrintMessage(fmt.Sprintf("Message %d reported.", id))
				return nil
			})
		},
	}
}

func newAttachmentCmd(r *runner) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "attachment <id>",
		Short: "Download an attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.withSession(cmd.Context(), false, func(app *factory.App) error {
				dl, err := app.Messages.Download(cmd.Context(), id)
				if err != nil {
					return err
				}
				path := outPath
				if path == "" {
					path = filepath.Base(dl.Filename)
				}
				if path == "" || path == "." || path == string(filepath.Separator) {
					path = fmt.Sprintf("attachment-%d", id)
				}
				if err := os.WriteFile(path, dl.Data, 0o600); err != nil {
					return fmt.Errorf("failed to save attachment: %w", err)
				}
				r.out(cmd).PrintMessage(fmt.Sprintf("Saved %s (%d bytes).", path, len(dl.Data)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "O", "", "Output path (default: the attachment's filename)")

	return cmd
}

// loadMessage finds id in the inbox or sent list. Listing the inbox also
// acknowledges it, as opening it in the game would.
func loadMessage(cmd *cobra.Command, app *factory.App, id int64) (model.Message, error) {
	if msg, err := app.Messages.Find(id); err == nil {
		return msg, nil
	}
	if _, err := app.Messages.ListInbox(cmd.Context()); err != nil && transport.IsUnauthorized(err) {
		return model.Message{}, err
	}
	if msg, err := app.Messages.Find(id); err == nil {
		return msg, nil
	}
	if _, err := app.Messages.ListSent(cmd.Context()); err != nil {
		return model.Message{}, err
	}
	return app.Messages.Find(id)
}

func readUpload(path string) (*transport.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &transport.Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid message id %q", s)
	}
	return id, nil
}
