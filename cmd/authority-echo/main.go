package main

import (
	"github.com/code-payments/code-echo/pkg/flow"
	"github.com/code-payments/code-echo/pkg/flow/cli"
)

func main() {
	cli.Execute(flow.KindAuthority)
}
