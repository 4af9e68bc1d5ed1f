package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var squareGreetings = [...]string{
	"Your board has three columns. All of them are waiting.",
	"Somewhere, a task is still marked to-do. It knows you know.",
	"Projects don't manage themselves. That was the whole pitch, actually.",
	"The done column is looking a little sparse today.",
	"A task without an assignee is just a wish with a title.",
	"Your teammates moved four cards while you read this sentence.",
	"In-progress is not a destination. It's barely a rest stop.",
	"The board remembers what you said you'd finish last week.",
	"Every card you drag is one less thing pretending to be done.",
	"Sign in. The backlog isn't getting shorter on its own.",
	"Deadlines don't show up on the board. They show up anyway.",
	"One column in. One column out. You're standing in the hallway.",
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("S Q U A R E")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Projects, tasks, and the people avoiding them.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"square", "Open your boards (interactive TUI)"},
		{"square login", "Sign in with email and password"},
		{"square register", "Create an account"},
		{"square logout", "Clear your session"},
		{"square --version", "Show version"},
		{"square help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	url := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(defaultAppURL)
	fmt.Printf("\n  %s\n\n", url)
}

func printSquareGreeting() {
	msg := squareGreetings[rand.IntN(len(squareGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("SQUARE")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To get started: square login")

	fmt.Printf("\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
