package command

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"takabot/internal/core/domain"
	"takabot/internal/core/port"
	"takabot/internal/core/service"
)

type Debug struct {
	responder port.Responder
	auth      service.Authorizer
	command   string
}

func NewDebug(responder port.Responder, auth service.Authorizer) *Debug {
	return &Debug{responder: responder, auth: auth, command: "debug"}
}

func (d *Debug) GetCommand() string {
	return d.command
}

func (d *Debug) Schema() domain.Schema {
	return domain.Schema{Name: d.command, Description: "Show runtime statistics (owner only)"}
}

const kb = 1024
const debugTemplate = "```\nallocated mem: %d KB\ngoroutines running: %d\nheap: %d KB\nstack: %d KB\n" +
	"compiled with %s for %s-%s\n```"
const metricCount = 3

func (d *Debug) Respond(ctx context.Context, req *domain.Request) domain.Outcome {
	if outcome, ok := ownerOnly(d.auth, req); !ok {
		return outcome
	}

	l := commandLogger(d.command, req)

	data := make([]metrics.Sample, metricCount)
	data[0] = metrics.Sample{Name: "/memory/classes/heap/objects:bytes"}
	data[1] = metrics.Sample{Name: "/memory/classes/heap/stacks:bytes"}
	data[2] = metrics.Sample{Name: "/memory/classes/total:bytes"}

	metrics.Read(data)

	for _, sample := range data {
		l.Debug().Str("name", sample.Name).Msgf("%d", sample.Value.Uint64())
	}

	goos, goarch := runtime.GOOS, runtime.GOARCH
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "GOOS":
				goos = setting.Value
			case "GOARCH":
				goarch = setting.Value
			}
		}
	}

	return deliverText(ctx, d.responder, req, fmt.Sprintf(
		debugTemplate,
		data[2].Value.Uint64()/kb,
		runtime.NumGoroutine(),
		data[0].Value.Uint64()/kb,
		data[1].Value.Uint64()/kb,
		runtime.Version(), goos, goarch,
	))
}
