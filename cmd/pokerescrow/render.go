package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/pokerescrow/internal/history"
	"github.com/lox/pokerescrow/internal/simulator"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	roomStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	noisyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

// configureColor forces plain output when noColor is set.
func configureColor(noColor bool) {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func renderSimulation(w io.Writer, r *simulator.Report) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Simulation (seed %d, policy %s)", r.Seed, r.Policy)))
	if len(r.Noisy) > 0 {
		fmt.Fprintf(w, "Noisy voters: %s\n", noisyStyle.Render(strings.Join(r.Noisy, ", ")))
	}
	fmt.Fprintln(w)

	for _, rr := range r.Rounds {
		line := roomStyle.Render(fmt.Sprintf("Room %d", rr.Room)) +
			dimStyle.Render(fmt.Sprintf(" created by %s, %d seated", rr.Creator, len(rr.Seated)))
		fmt.Fprintln(w, line)
		if len(rr.Rejected) > 0 {
			fmt.Fprintf(w, "  %s %s\n", failStyle.Render("rejected:"), strings.Join(rr.Rejected, ", "))
		}
		if len(rr.Folded) > 0 {
			fmt.Fprintf(w, "  folded: %s\n", strings.Join(rr.Folded, ", "))
		}
		switch {
		case rr.Settled:
			fmt.Fprintf(w, "  %s %s takes %d (%d/%d votes)\n", winStyle.Render("settled:"), rr.Winner, rr.Payout, rr.Votes, rr.Active)
		default:
			fmt.Fprintf(w, "  %s %s\n", failStyle.Render("unsettled:"), rr.Reason)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Standings"))
	for i, e := range r.Standings {
		name := e.Actor
		if slices.Contains(r.Banned, e.Actor) {
			name = failStyle.Render(name + " (banned)")
		}
		fmt.Fprintf(w, "%3d. %-28s %+d\n", i+1, name, e.Score)
	}

	fmt.Fprintln(w)
	verified := winStyle.Render("verified")
	if !r.Verified {
		verified = failStyle.Render("BROKEN")
	}
	fmt.Fprintf(w, "Settled %d/%d rounds, %d still escrowed, ledger %s\n", r.SettledRounds(), len(r.Rounds), r.Escrowed, verified)
}

func renderRound(w io.Writer, idx int, r history.Round) {
	fmt.Fprintln(w, roomStyle.Render(fmt.Sprintf("#%d  Room %d", idx, r.Room))+
		dimStyle.Render(fmt.Sprintf("  buy-in %d, blinds %d/%d, settled %s", r.BuyIn, r.SmallBlind, r.BigBlind, r.SettledAt.Format("2006-01-02 15:04:05"))))
	for i, p := range r.Players {
		fmt.Fprintf(w, "  p%d  %s\n", i+1, p)
	}
	if len(r.Actions) > 0 {
		fmt.Fprintf(w, "  actions: %s\n", strings.Join(r.Actions, ", "))
	}
	if len(r.Ballots) > 0 {
		fmt.Fprintf(w, "  ballots: %s\n", strings.Join(r.Ballots, ", "))
	}
	fmt.Fprintf(w, "  %s %s takes %d (%d/%d votes)\n", winStyle.Render("winner:"), r.ResolveRef(r.Winner), r.Payout, r.Votes, r.Active)
	if len(r.Reputation) > 0 {
		fmt.Fprintf(w, "  reputation: %s\n", strings.Join(r.Reputation, ", "))
	}
}

