package main

import (
	"fmt"

	"github.com/zbennett/bbo-extension/internal/mcpserver"
	"github.com/zbennett/bbo-extension/internal/notation"
)

type ConvertCmd struct {
	Dot2LIN Dot2LINCmd `cmd:"dot2lin" help:"Dot hand (AKQ.JT9.876.5432) to LIN"`
	LIN2Dot LIN2DotCmd `cmd:"lin2dot" help:"LIN hand (SAKQHJT9D876C5432) to dot notation"`
	Board   BoardCmd   `cmd:"board" help:"Dealer and vulnerability of a board"`
}

type Dot2LINCmd struct {
	Hand string `arg:"" help:"Hand in dot notation"`
}

func (c Dot2LINCmd) Run() error {
	lin, err := notation.DotToLIN(c.Hand)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, lin)
	return err
}

type LIN2DotCmd struct {
	Hand string `arg:"" help:"Hand in LIN notation"`
}

func (c LIN2DotCmd) Run() error {
	dot, err := notation.LINToDot(c.Hand)
	if err != nil {
		return err
	}
	hcp, err := notation.HandHCP(dot)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\t%d hcp\n", dot, hcp)
	return err
}

type BoardCmd struct {
	Number int `arg:"" help:"Board number"`
}

func (c BoardCmd) Run() error {
	if c.Number < 1 {
		return fmt.Errorf("board %d: must be positive", c.Number)
	}
	info := mcpserver.BoardInfo(c.Number)
	_, err := fmt.Fprintf(stdout, "board %d: %s deals, %s vulnerable\n", c.Number, info["dealer"], info["vulnerability"])
	return err
}
