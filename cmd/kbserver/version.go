package main

import (
	"context"
	"fmt"

	"github.com/a-h/kbserver"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(kbserver.Version)
	return nil
}
