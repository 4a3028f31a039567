package track

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"

	"jobpilot-engine/internal/store"
)

// InboxWatcher polls an IMAP mailbox for employer replies and moves the
// matching applications to the status the mail implies.
type InboxWatcher struct {
	Addr     string // host:port
	Username string
	Password string
	Mailbox  string

	DB  *sql.DB
	Log *zap.Logger
}

type reply struct {
	uid     imap.UID
	from    string
	subject string
}

// PollOnce reads unseen messages and classifies them. Matched messages
// are marked seen; unmatched ones are left alone for the user.
func (w *InboxWatcher) PollOnce(ctx context.Context) (updated int, err error) {
	if w.Addr == "" || w.Username == "" || w.Password == "" {
		return 0, errors.New("inbox watcher needs addr, username and password")
	}
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}

	c, err := imapclient.DialTLS(w.Addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	})
	if err != nil {
		return 0, fmt.Errorf("imap dial tls: %w", err)
	}
	defer func() {
		_ = c.Logout().Wait()
		_ = c.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(w.Username, w.Password).Wait(); err != nil {
		return 0, fmt.Errorf("imap login: %w", err)
	}

	mailbox := w.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return 0, fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	replies, err := fetchUnseen(ctx, c)
	if err != nil {
		return 0, err
	}
	if len(replies) == 0 {
		return 0, nil
	}

	open, err := store.OpenApplications(ctx, w.DB)
	if err != nil {
		return 0, err
	}

	var seen []imap.UID
	for _, r := range replies {
		app, ok := w.matchApplication(ctx, open, r)
		if !ok {
			continue
		}
		status := classifyReply(r.subject)
		if status == "" {
			continue
		}
		if err := store.UpdateApplicationStatus(ctx, w.DB, app.ID, status); err != nil {
			log.Warn("status update failed",
				zap.Int64("application", app.ID), zap.Error(err))
			continue
		}
		log.Info("reply matched",
			zap.Int64("application", app.ID),
			zap.String("status", status),
			zap.String("from", r.from))
		updated++
		seen = append(seen, r.uid)
	}

	if len(seen) > 0 {
		if err := markSeen(c, seen); err != nil {
			log.Warn("mark seen failed", zap.Error(err))
		}
	}
	return updated, nil
}

func fetchUnseen(ctx context.Context, c *imapclient.Client) ([]reply, error) {
	cutoff := time.Now().AddDate(0, -3, 0)
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   cutoff,
	}

	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}
	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:      true,
		Envelope: true,
	})
	defer func() { _ = fetchCmd.Close() }()

	var out []reply
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		r := reply{uid: buf.UID}
		if buf.Envelope != nil {
			r.subject = buf.Envelope.Subject
			if len(buf.Envelope.From) > 0 {
				r.from = strings.TrimSpace(buf.Envelope.From[0].Addr())
			}
		}
		if r.from != "" || r.subject != "" {
			out = append(out, r)
		}
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func markSeen(c *imapclient.Client, uids []imap.UID) error {
	cmd := c.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	return cmd.Close()
}

// matchApplication links a reply to an open application by company
// name: sender domain or subject mentioning the company.
func (w *InboxWatcher) matchApplication(ctx context.Context, open []store.Application, r reply) (store.Application, bool) {
	fromLower := strings.ToLower(r.from)
	subjLower := strings.ToLower(r.subject)

	for _, app := range open {
		sl, err := store.GetListing(ctx, w.DB, app.ListingID)
		if err != nil {
			continue
		}
		company := strings.ToLower(strings.TrimSpace(sl.Listing.Company))
		if company == "" {
			continue
		}
		token := strings.ReplaceAll(company, " ", "")
		if strings.Contains(fromLower, token) || strings.Contains(subjLower, company) {
			return app, true
		}
	}
	return store.Application{}, false
}

var rejectionPhrases = []string{
	"unfortunately", "regret to inform", "not moving forward",
	"decided to pursue", "other candidates", "position has been filled",
}

// classifyReply maps a subject line to a status. Empty means the mail
// was recognized as employer traffic but not classifiable.
func classifyReply(subject string) string {
	s := strings.ToLower(subject)
	switch {
	case strings.Contains(s, "offer"):
		return store.StatusOffer
	case strings.Contains(s, "interview"), strings.Contains(s, "next steps"),
		strings.Contains(s, "schedule a call"):
		return store.StatusInterview
	}
	for _, p := range rejectionPhrases {
		if strings.Contains(s, p) {
			return store.StatusRejected
		}
	}
	return ""
}
