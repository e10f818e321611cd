/*
 * Copyright (c) 2022, 0x1306a94 <0x1306a94 at gmail dot com>
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions are met:
 *
 *  * Redistributions of source code must retain the above copyright notice,
 *    this list of conditions and the following disclaimer.
 *
 *  * Redistributions in binary form must reproduce the above copyright notice,
 *    this list of conditions and the following disclaimer in the documentation
 *    and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
 * AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
 * IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
 * ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
 * LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
 * CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
 * SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
 * INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
 * CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
 * ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

// xlogdecode is the command line decoder for mars xlog binary log
// archives.
//
// Generate a key pair for the logging side:
//   xlogdecode gen-key [--out keys.json]
//
// Decode one archive, or every *.xlog archive under a directory:
//   xlogdecode decode --input <path> --output <path>
//                     [--private-key <hex> | --key-file keys.json]
//
// A missing private key asserts the archives are unencrypted; encrypted
// frames then surface a "use wrong decode script" line in the output.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	xlog "github.com/0x1306a94/xlog-decode"
	"github.com/0x1306a94/xlog-decode/common/ecdh"
)

const archiveSuffix = ".xlog"

var log = logrus.New()

func main() {
	app := &cli.App{
		Name:  "xlogdecode",
		Usage: "decode mars xlog binary log archives",
		Commands: []*cli.Command{
			genKeyCommand(),
			decodeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func genKeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "gen-key",
		Usage: "generate a secp256k1 key pair",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "also write the pair to a JSON key store `FILE`",
			},
		},
		Action: func(c *cli.Context) error {
			kp, err := ecdh.NewKeypair()
			if err != nil {
				return err
			}
			fmt.Printf("private_key: %s\n", kp.PrivateHex())
			fmt.Printf("public_key: %s\n", kp.PublicHex())
			if out := c.String("out"); out != "" {
				if err = xlog.WriteKeyStore(out, kp); err != nil {
					return err
				}
				log.WithField("path", out).Info("key store written")
			}
			return nil
		},
	}
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "decode one archive, or every archive under a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "archive `FILE` or directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "output `FILE` or directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "private-key",
				Usage: "hex private `KEY`; omit for unencrypted archives",
			},
			&cli.StringFlag{
				Name:  "key-file",
				Usage: "JSON key store `FILE` holding the private key",
			},
		},
		Action: runDecode,
	}
}

func runDecode(c *cli.Context) error {
	input := c.String("input")
	output := c.String("output")

	key := c.String("private-key")
	if keyFile := c.String("key-file"); keyFile != "" {
		if key != "" {
			return fmt.Errorf("--private-key and --key-file are mutually exclusive")
		}
		var err error
		if key, err = xlog.LoadKeyStore(keyFile); err != nil {
			return err
		}
	}

	fi, err := os.Stat(input)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return decodeTree(input, output, key)
	}

	if outInfo, err := os.Stat(output); err == nil && outInfo.IsDir() {
		output = filepath.Join(output, outputName(filepath.Base(input)))
	}
	return decodeOne(input, output, key)
}

func decodeOne(input, output, key string) error {
	l := log.WithFields(logrus.Fields{"input": input, "output": output})
	if err := xlog.DecodeFile(input, output, key); err != nil {
		l.WithError(err).Error("decode failed")
		return err
	}
	l.Info("decoded")
	return nil
}

// decodeTree decodes every *.xlog file under root into outDir, one
// decoder per archive, a bounded number of archives at a time.
func decodeTree(root, outDir, key string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	var archives []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), archiveSuffix) {
			archives = append(archives, p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		log.WithField("dir", root).Warn("no archives found")
		return nil
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range archives {
		p := p
		g.Go(func() error {
			return decodeOne(p, filepath.Join(outDir, outputName(filepath.Base(p))), key)
		})
	}

	return g.Wait()
}

// outputName maps an archive name to its decoded name the way the
// upstream batch decoder does: the final extension is replaced with
// ".xlog.log".
func outputName(base string) string {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + ".xlog.log"
}

/* vim :set ts=4 sw=4 sts=4 noet : */
