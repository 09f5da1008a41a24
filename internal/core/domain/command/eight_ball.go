package command

import (
	"context"
	"math/rand/v2"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
)

type EightBall struct {
	responder port.Responder
	command   string
}

func NewEightBall(responder port.Responder) *EightBall {
	return &EightBall{responder: responder, command: "8ball"}
}

func (e *EightBall) GetCommand() string {
	return e.command
}

func (e *EightBall) Schema() domain.Schema {
	return domain.Schema{
		Name:        e.command,
		Description: "Get the real only answer to your question.",
		Options: []domain.SchemaOption{
			{Name: "question", Description: "The question", Type: domain.OptionString, Required: true},
		},
	}
}

var yesAnswers = []string{
	"Well duh..",
	"Obviously yes",
	"Do you think I'm stupid? Yes!!!",
	"Omg ofc.",
	"Yes!!",
	"uwu yes",
	"not like the answer is yes or anything b-baka",
	"maybe... ok... yeh... if I think about it... ok the answer is........ yes",
}

var noAnswers = []string{
	"Are you for real? Of course not.",
	"The answer is actually no",
	"Noooo",
	"nou",
	"No!!!",
	"b-baka, no!!",
	"Ok time to be edgy.. no...",
	"did you know 'I'm fine' is actually a very common lie? well saying the answer to this question is yes is " +
		"also a lie.",
}

func (e *EightBall) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	question, ok := req.Interaction.Args.String("question")
	if !ok || question == "" {
		return domain.Fail("❌ You have to ask a question")
	}

	answers := noAnswers
	if rand.IntN(2) == 0 {
		answers = yesAnswers
	}

	embed := domain.Embed{
		Title:       truncate(question, maxTitleLength),
		Description: answers[rand.IntN(len(answers))],
		Color:       colorDefault,
	}

	return deliver(ctx, e.responder, req, domain.Content{Embeds: []domain.Embed{embed}})
}
