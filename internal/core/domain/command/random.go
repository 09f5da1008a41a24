package command

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
)

type Random struct {
	responder port.Responder
	command   string
}

func NewRandom(responder port.Responder) *Random {
	return &Random{responder: responder, command: "random"}
}

func (r *Random) GetCommand() string {
	return r.command
}

func (r *Random) Schema() domain.Schema {
	return domain.Schema{
		Name:        r.command,
		Description: "Get a random number",
		Options: []domain.SchemaOption{
			{Name: "min", Description: "The minimum value", Type: domain.OptionInteger, MinValue: float(0)},
			{Name: "max", Description: "The maximum value", Type: domain.OptionInteger, MinValue: float(0)},
		},
	}
}

const (
	negativeRangeMessage = "❌ Values can't be negative"
	emptyRangeMessage    = "❌ The minimum has to be lower than the maximum"
)

func (r *Random) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	lower, ok := req.Interaction.Args.Int("min")
	if !ok {
		lower = 0
	}

	upper, ok := req.Interaction.Args.Int("max")
	if !ok {
		upper = math.MaxInt64
	}

	if lower < 0 || upper < 0 {
		return domain.Fail(negativeRangeMessage)
	}

	if lower >= upper {
		return domain.Fail(emptyRangeMessage)
	}

	n := lower + rand.Int64N(upper-lower)

	return deliverText(ctx, r.responder, req, strconv.FormatInt(n, 10))
}
