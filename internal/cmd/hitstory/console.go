package hitstory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"

	"hitstory/internal/app"
	"hitstory/internal/app/session"
	"hitstory/internal/bot"
	"hitstory/internal/domain"
)

const (
	drawBatch   = 5
	consoleUser = "local"
)

// Console commands handled outside the reducer. Any other type is decoded
// as an action envelope.
const (
	cmdDraw      = "draw"
	cmdDeal      = "deal"
	cmdStandings = "standings"
	cmdState     = "state"
	cmdLogin     = "login"
	cmdCallback  = "callback"
)

var errNoSpotify = errors.New("spotify is not configured")

type consoleLine struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type consoleReply struct {
	Phase     domain.Phase      `json:"phase"`
	Events    []app.EventKind   `json:"events,omitempty"`
	Rejected  string            `json:"rejected,omitempty"`
	Error     string            `json:"error,omitempty"`
	Standings []domain.Standing `json:"standings,omitempty"`
	State     *domain.GameState `json:"state,omitempty"`
	URL       string            `json:"url,omitempty"`
}

// console reads one JSON command per line and answers with one JSON reply per line.
type console struct {
	session  *session.Session
	src      *sources
	deviceID string
	logger   runtime.Logger
}

func newConsole(s *session.Session, src *sources, cfg Config, logger runtime.Logger) *console {
	return &console{session: s, src: src, deviceID: cfg.DeviceID, logger: logger}
}

func (c *console) run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	enc := json.NewEncoder(out)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		reply := c.handle(ctx, []byte(line))
		reply.Phase = c.session.State().Phase
		if err := enc.Encode(reply); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
	return scanner.Err()
}

func (c *console) handle(ctx context.Context, line []byte) consoleReply {
	var cmd consoleLine
	if err := json.Unmarshal(line, &cmd); err != nil {
		return consoleReply{Error: fmt.Sprintf("decode command: %v", err)}
	}

	switch cmd.Type {
	case cmdDraw:
		return c.draw(ctx)
	case cmdDeal:
		return c.deal(ctx)
	case cmdStandings:
		return consoleReply{Standings: domain.Standings(c.session.State().Players)}
	case cmdState:
		return consoleReply{State: c.session.State()}
	case cmdLogin:
		return c.login(ctx)
	case cmdCallback:
		return c.callback(ctx, cmd.URL)
	}

	action, err := app.DecodeAction(line)
	if err != nil {
		return consoleReply{Error: err.Error()}
	}
	res, err := c.session.Dispatch(ctx, action)
	if err != nil {
		return consoleReply{Error: err.Error()}
	}
	return replyFor(res)
}

func replyFor(res session.Result) consoleReply {
	reply := consoleReply{}
	if res.Rejected != nil {
		reply.Rejected = res.Rejected.Error()
		return reply
	}
	for _, ev := range res.Events {
		reply.Events = append(reply.Events, ev.Kind)
	}
	return reply
}

// draw puts an unused card from the game's source in play and starts
// playback when a device is configured.
func (c *console) draw(ctx context.Context) consoleReply {
	state := c.session.State()
	if state.Phase != domain.PhasePreTurn {
		return consoleReply{Error: fmt.Sprintf("cannot draw during %s", state.Phase)}
	}
	source, _, err := c.src.forID(ctx, state.Settings.SourceID)
	if err != nil {
		return consoleReply{Error: err.Error()}
	}
	cards, err := source.RandomCards(ctx, state.Settings.SourceID, drawBatch)
	if err != nil {
		return consoleReply{Error: err.Error()}
	}
	var card domain.Card
	found := false
	for _, candidate := range cards {
		if !state.CardInPlay(candidate.ID) {
			card, found = candidate, true
			break
		}
	}
	if !found {
		return consoleReply{Error: bot.ErrSourceExhausted.Error()}
	}

	res, err := c.session.Dispatch(ctx, app.SetCurrentCard{Card: card})
	if err != nil {
		return consoleReply{Error: err.Error()}
	}
	reply := replyFor(res)
	if res.Rejected == nil && c.deviceID != "" && c.src.player != nil && card.URI != "" {
		if err := c.src.player.Play(ctx, card.URI, c.deviceID); err != nil {
			c.logger.Warn("Failed to start playback of %s: %v", card.URI, err)
		}
	}
	return reply
}

func (c *console) deal(ctx context.Context) consoleReply {
	state := c.session.State()
	source, _, err := c.src.forID(ctx, state.Settings.SourceID)
	if err != nil {
		return consoleReply{Error: err.Error()}
	}
	if err := bot.DealInitialCards(ctx, c.session, source, state.Settings.SourceID); err != nil {
		return consoleReply{Error: err.Error()}
	}
	return consoleReply{Events: []app.EventKind{app.EventInitialCardsDealt}}
}

func (c *console) login(ctx context.Context) consoleReply {
	if c.src.auth == nil {
		return consoleReply{Error: errNoSpotify.Error()}
	}
	u, err := c.src.auth.LoginURL(ctx, consoleUser)
	if err != nil {
		return consoleReply{Error: err.Error()}
	}
	return consoleReply{URL: u}
}

// callback completes login from the URL the browser was redirected to.
func (c *console) callback(ctx context.Context, raw string) consoleReply {
	if c.src.auth == nil {
		return consoleReply{Error: errNoSpotify.Error()}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return consoleReply{Error: fmt.Sprintf("parse callback url: %v", err)}
	}
	q := u.Query()
	if msg := q.Get("error"); msg != "" {
		return consoleReply{Error: "spotify login failed: " + msg}
	}
	tok, err := c.src.auth.Exchange(ctx, consoleUser, q.Get("code"), q.Get("state"))
	if err != nil {
		return consoleReply{Error: err.Error()}
	}
	if err := c.src.tokens.Save(ctx, tok); err != nil {
		return consoleReply{Error: err.Error()}
	}
	c.logger.Info("Spotify login complete")
	return consoleReply{}
}
