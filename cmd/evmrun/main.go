// Copyright 2024 The evmcore Authors
// This file is part of the evmcore library.
//
// The evmcore library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmcore library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmcore library. If not, see <http://www.gnu.org/licenses/>.

// evmrun executes a single code snippet against an in-memory Backend
// and prints its exit reason and return bytes, in the spirit of the
// teacher's own cvm command but built around this core's Machine/
// StackExecutor split instead of a gas-metered interpreter loop.
package main

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/holiman/uint256"

	"github.com/coreband/evmcore/common"
	"github.com/coreband/evmcore/log"
	"github.com/coreband/evmcore/memstate"
	"github.com/coreband/evmcore/vm"
)

var (
	codeFlag = cli.StringFlag{
		Name:  "code",
		Usage: "contract code, as hex",
	}
	codeFileFlag = cli.StringFlag{
		Name:  "codefile",
		Usage: "file containing contract code as hex",
	}
	inputFlag = cli.StringFlag{
		Name:  "input",
		Usage: "call data, as hex",
	}
	valueFlag = cli.StringFlag{
		Name:  "value",
		Usage: "value sent with the call, decimal",
		Value: "0",
	}
	createFlag = cli.BoolFlag{
		Name:  "create",
		Usage: "run code as init code via CREATE instead of calling it",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML file overlaying the Istanbul-era default Config",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity, 0 (trace) through 4 (error)",
		Value: 2,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "evmrun"
	app.Usage = "run a single contract call or create against an in-memory backend"
	app.Flags = []cli.Flag{codeFlag, codeFileFlag, inputFlag, valueFlag, createFlag, configFlag, verbosityFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	log.Root.SetLevel(log.Level(ctx.Int(verbosityFlag.Name)))

	code, err := loadCode(ctx)
	if err != nil {
		return err
	}
	input, err := hex.DecodeString(trim0x(ctx.String(inputFlag.Name)))
	if err != nil {
		return fmt.Errorf("bad --input: %w", err)
	}

	cfg := vm.DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := vm.LoadTOMLFile(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	value, err := parseValue(ctx.String(valueFlag.Name))
	if err != nil {
		return err
	}

	backend := memstate.New(32 * 1024 * 1024)
	caller := common.HexToAddress("0x00000000000000000000000000000000000001")
	backend.SetAccount(caller, 0, *uint256.NewInt(1_000_000_000), nil)

	executor := vm.NewStackExecutor(backend, vm.NoPrecompiles{}, &cfg)

	var result vm.CallResult
	if ctx.Bool(createFlag.Name) {
		result = executor.TransactCreate(caller, value, code)
	} else {
		target := common.HexToAddress("0x00000000000000000000000000000000000002")
		backend.SetAccount(target, 0, uint256.Int{}, code)
		result = executor.TransactCall(caller, target, value, input, false)
	}

	fmt.Printf("exit: %v (succeed=%v)\n", result.Exit, result.Exit != nil && result.Exit.IsSucceed())
	if !result.Address.IsZero() {
		fmt.Printf("address: %s\n", result.Address.Hex())
	}
	fmt.Printf("return: 0x%s\n", hex.EncodeToString(result.ReturnData))
	for _, l := range result.Logs {
		fmt.Println(l.String())
	}
	return nil
}

func loadCode(ctx *cli.Context) ([]byte, error) {
	var raw string
	switch {
	case ctx.String(codeFileFlag.Name) != "":
		b, err := ioutil.ReadFile(ctx.String(codeFileFlag.Name))
		if err != nil {
			return nil, err
		}
		raw = string(b)
	default:
		raw = ctx.String(codeFlag.Name)
	}
	return hex.DecodeString(trim0x(strings.TrimSpace(raw)))
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func parseValue(s string) (uint256.Int, error) {
	var v uint256.Int
	if err := v.SetFromDecimal(s); err != nil {
		return uint256.Int{}, fmt.Errorf("bad --value: %w", err)
	}
	return v, nil
}
