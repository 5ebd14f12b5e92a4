// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	apimmr "github.com/vechain/mmrledger/api/mmr"
	"github.com/vechain/mmrledger/mmr"
	"github.com/vechain/mmrledger/thor"
)

// parseLeafArg decodes a hex leaf, or reads the raw leaf from a file when prefixed by '@'.
func parseLeafArg(arg string) (mmr.Leaf, error) {
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read leaf file %v", path)
		}
		return mmr.OpaqueLeaf(data), nil
	}
	data, err := hexutil.Decode(arg)
	if err != nil {
		return nil, errors.Wrapf(err, "decode leaf %q", arg)
	}
	return mmr.OpaqueLeaf(data), nil
}

func parseLeafCountFlag(ctx *cli.Context) (*uint64, error) {
	s := ctx.String(leafCountFlag.Name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid --%v", leafCountFlag.Name)
	}
	return &n, nil
}

func parseIndices(args []string) ([]uint64, error) {
	indices := make([]uint64, 0, len(args))
	for _, arg := range args {
		i, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid leaf index %q", arg)
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// writeOutput writes v as JSON to the --out file, or to the app writer.
func writeOutput(ctx *cli.Context, v any) error {
	var w io.Writer = ctx.App.Writer
	if path := ctx.String(outFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func appendAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	if ctx.NArg() == 0 {
		return errors.New("no leaves given")
	}
	leaves := make([]mmr.Leaf, 0, ctx.NArg())
	for _, arg := range ctx.Args() {
		leaf, err := parseLeafArg(arg)
		if err != nil {
			return err
		}
		leaves = append(leaves, leaf)
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	indices, err := l.acc.Append(leaves...)
	if err != nil {
		return err
	}
	root, count, err := l.acc.Root()
	if err != nil {
		return err
	}
	return writeOutput(ctx, &apimmr.AppendResponse{Indices: indices, Root: root, LeafCount: count})
}

func rootAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	leafCount, err := parseLeafCountFlag(ctx)
	if err != nil {
		return err
	}
	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	var resp apimmr.Root
	if leafCount == nil {
		resp.Root, resp.LeafCount, err = l.acc.Root()
	} else {
		resp.LeafCount = *leafCount
		resp.Root, err = l.acc.RootAt(*leafCount)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.App.Writer, "%v %d\n", resp.Root, resp.LeafCount)
	return err
}

func proveAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	indices, err := parseIndices(ctx.Args())
	if err != nil {
		return err
	}
	bestKnown, err := parseLeafCountFlag(ctx)
	if err != nil {
		return err
	}
	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	leaves, proof, err := l.acc.GenerateProof(indices, bestKnown)
	if err != nil {
		return err
	}
	resp := &apimmr.ProofResponse{Proof: proof}
	for _, leaf := range leaves {
		resp.Leaves = append(resp.Leaves, apimmr.ConvertLeaf(leaf))
	}
	return writeOutput(ctx, resp)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(data, v), "decode %v", path)
}

func verifyAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	if ctx.NArg() != 1 {
		return errors.New("expected a proof file")
	}
	var proof apimmr.ProofResponse
	if err := readJSONFile(ctx.Args().First(), &proof); err != nil {
		return err
	}
	if proof.Proof == nil {
		return errors.New("proof file carries no proof")
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	leaves, err := apimmr.ConvertLeaves(proof.Leaves)
	if err != nil {
		return errors.WithMessage(err, "proof file")
	}
	if s := ctx.String(rootFlag.Name); s != "" {
		root, perr := thor.ParseBytes32(s)
		if perr != nil {
			return errors.Wrapf(perr, "invalid --%v", rootFlag.Name)
		}
		err = l.acc.VerifyProofStateless(root, leaves, proof.Proof)
	} else {
		err = l.acc.VerifyProof(leaves, proof.Proof)
	}
	if err != nil {
		return errors.WithMessage(err, "invalid proof")
	}
	_, err = fmt.Fprintln(ctx.App.Writer, "valid")
	return err
}

func ancestryAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	if ctx.NArg() != 1 {
		return errors.New("expected the previous leaf count")
	}
	prev, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
	if err != nil {
		return errors.Wrap(err, "invalid previous leaf count")
	}
	bestKnown, err := parseLeafCountFlag(ctx)
	if err != nil {
		return err
	}
	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	proof, err := l.acc.GenerateAncestryProof(prev, bestKnown)
	if err != nil {
		return err
	}
	resp := &apimmr.AncestryVerifyRequest{Proof: proof}
	if resp.PrevRoot, err = l.acc.RootAt(proof.PrevLeafCount); err != nil {
		return err
	}
	if resp.Root, err = l.acc.RootAt(proof.LeafCount); err != nil {
		return err
	}
	return writeOutput(ctx, resp)
}

func importAction(ctx *cli.Context) error {
	initLogger(ctx, os.Stderr)
	if ctx.NArg() != 1 {
		return errors.New("expected a leaf file")
	}
	batchSize := ctx.Int(batchFlag.Name)
	if batchSize <= 0 {
		return errors.Errorf("invalid --%v", batchFlag.Name)
	}

	path := ctx.Args().First()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	var bar *pb.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = pb.New64(fi.Size()).SetUnits(pb.U_BYTES).SetMaxWidth(90)
		bar.Output = os.Stderr
		bar.Start()
		defer bar.Finish()
	}

	var (
		scanner  = bufio.NewScanner(f)
		batch    = make([]mmr.Leaf, 0, batchSize)
		imported int
		lineNum  int
	)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := l.acc.Append(batch...); err != nil {
			return errors.WithMessagef(err, "append leaves before line %d", lineNum+1)
		}
		imported += len(batch)
		batch = batch[:0]
		return nil
	}
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if bar != nil {
			bar.Add(len(scanner.Bytes()) + 1)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		data, err := hexutil.Decode(line)
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNum)
		}
		batch = append(batch, mmr.OpaqueLeaf(data))
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	root, count, err := l.acc.Root()
	if err != nil {
		return err
	}
	logger.Info("leaves imported", "file", path, "imported", imported, "leafCount", count, "root", root)
	_, err = fmt.Fprintf(ctx.App.Writer, "%v %d\n", root, count)
	return err
}
