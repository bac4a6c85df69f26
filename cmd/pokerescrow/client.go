package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lox/pokerescrow/cmd/pokerescrow/shared"
	"github.com/lox/pokerescrow/internal/client"
	"github.com/lox/pokerescrow/internal/identity"
)

// ClientCmd groups one-shot intent submissions.
type ClientCmd struct {
	Server string        `kong:"default='http://localhost:8080',env='POKERESCROW_SERVER',help='Server URL'"`
	Key    string        `kong:"default='actor.key',env='POKERESCROW_KEY',help='Private key file from keygen'"`
	Actor  string        `kong:"help='Send unsigned as this actor (server must run with --no-signatures)'"`
	Wait   time.Duration `kong:"default='10s',help='How long to wait for a result'"`
	Debug  bool          `kong:"help='Enable debug logging'"`

	Create   ClientCreateCmd   `cmd:"" help:"Create a room"`
	Join     ClientJoinCmd     `cmd:"" help:"Join a room paying the buy-in"`
	Start    ClientStartCmd    `cmd:"" help:"Start a room (creator only)"`
	Action   ClientActionCmd   `cmd:"" help:"Record a betting action"`
	Vote     ClientVoteCmd     `cmd:"" help:"Vote for the winner"`
	Finalize ClientFinalizeCmd `cmd:"" help:"Settle a room (creator only)"`
	Watch    ClientWatchCmd    `cmd:"" help:"Print events for a room until interrupted"`
}

func (c *ClientCmd) dial(ctx context.Context) (*client.Client, error) {
	logger := shared.SetupLogger(c.Debug)
	opts := []client.Option{client.WithLogger(logger)}

	var key *identity.KeyPair
	if c.Actor != "" {
		opts = append(opts, client.WithActor(c.Actor))
	} else {
		k, err := loadKey(c.Key)
		if err != nil {
			return nil, fmt.Errorf("load key: %w", err)
		}
		key = k
	}
	return client.Dial(ctx, c.Server, key, opts...)
}

// do dials, runs fn with a deadline and reports the outcome.
func (c *ClientCmd) do(fn func(ctx context.Context, cl *client.Client) (string, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Wait)
	defer cancel()

	cl, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer cl.Close()

	msg, err := fn(ctx, cl)
	if err != nil {
		var re *client.ResultError
		if errors.As(err, &re) {
			return fmt.Errorf("rejected (%s): %s", re.Code, re.Reason)
		}
		return err
	}
	fmt.Println(msg)
	return nil
}

type ClientCreateCmd struct {
	BuyIn      uint64 `kong:"name='buy-in',required,help='Buy-in every player must pay'"`
	SmallBlind uint64 `kong:"name='small-blind',help='Small blind'"`
	BigBlind   uint64 `kong:"name='big-blind',help='Big blind'"`
	MaxPlayers int    `kong:"name='max-players',help='Seat limit (0 with no blinds uses the quick config)'"`
}

func (cmd *ClientCreateCmd) Run(parent *ClientCmd) error {
	return parent.do(func(ctx context.Context, cl *client.Client) (string, error) {
		room, err := cl.CreateRoom(ctx, cmd.BuyIn, cmd.SmallBlind, cmd.BigBlind, cmd.MaxPlayers)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("created room %d", room), nil
	})
}

type ClientJoinCmd struct {
	Room   uint64 `arg:"" help:"Room id"`
	Amount uint64 `arg:"" help:"Amount to pay (must equal the buy-in)"`
}

func (cmd *ClientJoinCmd) Run(parent *ClientCmd) error {
	return parent.do(func(ctx context.Context, cl *client.Client) (string, error) {
		if err := cl.Join(ctx, cmd.Room, cmd.Amount); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s joined room %d", cl.Actor(), cmd.Room), nil
	})
}

type ClientStartCmd struct {
	Room uint64 `arg:"" help:"Room id"`
}

func (cmd *ClientStartCmd) Run(parent *ClientCmd) error {
	return parent.do(func(ctx context.Context, cl *client.Client) (string, error) {
		if err := cl.Start(ctx, cmd.Room); err != nil {
			return "", err
		}
		return fmt.Sprintf("room %d started", cmd.Room), nil
	})
}

type ClientActionCmd struct {
	Room   uint64 `arg:"" help:"Room id"`
	Type   string `arg:"" help:"fold, check, call, bet, raise or allin"`
	Amount uint64 `arg:"" optional:"" help:"Chips committed (0 for fold and check)"`
}

func (cmd *ClientActionCmd) Run(parent *ClientCmd) error {
	return parent.do(func(ctx context.Context, cl *client.Client) (string, error) {
		if err := cl.RecordAction(ctx, cmd.Room, cmd.Type, cmd.Amount); err != nil {
			return "", err
		}
		return fmt.Sprintf("recorded %s %d in room %d", cmd.Type, cmd.Amount, cmd.Room), nil
	})
}

type ClientVoteCmd struct {
	Room      uint64 `arg:"" help:"Room id"`
	Candidate string `arg:"" help:"Actor you believe won"`
}

func (cmd *ClientVoteCmd) Run(parent *ClientCmd) error {
	return parent.do(func(ctx context.Context, cl *client.Client) (string, error) {
		if err := cl.Vote(ctx, cmd.Room, cmd.Candidate); err != nil {
			return "", err
		}
		return fmt.Sprintf("voted for %s in room %d", cmd.Candidate, cmd.Room), nil
	})
}

type ClientFinalizeCmd struct {
	Room      uint64 `arg:"" help:"Room id"`
	Candidate string `arg:"" help:"Winner to pay out"`
}

func (cmd *ClientFinalizeCmd) Run(parent *ClientCmd) error {
	return parent.do(func(ctx context.Context, cl *client.Client) (string, error) {
		if err := cl.Finalize(ctx, cmd.Room, cmd.Candidate); err != nil {
			return "", err
		}
		return fmt.Sprintf("room %d settled in favour of %s", cmd.Room, cmd.Candidate), nil
	})
}

type ClientWatchCmd struct {
	Room uint64 `arg:"" help:"Room id"`
}

func (cmd *ClientWatchCmd) Run(parent *ClientCmd) error {
	logger := shared.SetupLogger(parent.Debug)
	ctx := shared.SetupSignalHandler(logger)

	dialCtx, cancel := context.WithTimeout(ctx, parent.Wait)
	cl, err := parent.dial(dialCtx)
	cancel()
	if err != nil {
		return err
	}
	defer cl.Close()

	if err := cl.Watch(ctx, cmd.Room); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching room %d\n", cmd.Room)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-cl.Events():
			if !ok {
				return errors.New("connection closed")
			}
			at := time.Unix(0, e.At).Format(time.TimeOnly)
			fmt.Printf("%s %-16s actor=%s amount=%d action=%s candidate=%s %s\n",
				at, e.Kind, e.Actor, e.Amount, e.Action, e.Candidate, e.Reason)
		}
	}
}
