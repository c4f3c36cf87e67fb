// This is free and unencumbered software released into the public domain.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"nullprogram.com/x/optparse"
	"nullprogram.com/x/passphrase2bcrypt/bcrypt"
)

var version = "1.0.0"

// Print the message like fmt.Printf() and then os.Exit(1).
func fatal(format string, args ...interface{}) {
	buf := bytes.NewBufferString("passphrase2bcrypt: ")
	fmt.Fprintf(buf, format, args...)
	buf.WriteRune('\n')
	os.Stderr.Write(buf.Bytes())
	os.Exit(1)
}

// Read and confirm the passphrase per the user's preference.
func readPassphrase(pinentry string, repeat int) ([]byte, error) {
	if pinentry != "" {
		return pinentryPassphrase(pinentry, repeat)
	}
	return terminalPassphrase(repeat)
}

// Returns the first line of a file not including \r or \n. Does not
// require a newline and does not return io.EOF.
func firstLine(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		if err := s.Err(); err != io.EOF {
			return nil, err
		}
		return nil, nil // empty files are ok
	}
	return s.Bytes(), nil
}

type config struct {
	check    string
	cost     int
	input    string
	pinentry string
	repeat   int
	salt     string
	verbose  bool
}

func usage(w io.Writer) {
	bw := bufio.NewWriter(w)
	i := "  "
	b := "      "
	p := "passphrase2bcrypt"
	f := func(s ...interface{}) {
		fmt.Fprintln(bw, s...)
	}
	f("Usage:")
	f(i, p, "[-hv] [-c cost|-s salt] [-i pwfile] [--pinentry[=cmd]] [-r n]")
	f(b, "-C hash [-i pwfile] [--pinentry[=cmd]]")
	f("Options:")
	f(i, "-C, --check HASH       verify the passphrase against an existing hash")
	f(i, "-c, --cost N           hashing cost factor, 4-31 [12]")
	f(i, "-h, --help             print this help message")
	f(i, "-i, --input FILE       read passphrase from file")
	f(i, "--pinentry[=CMD]       use pinentry to read the passphrase")
	f(i, "-r, --repeat N         number of repeated passphrase prompts")
	f(i, "-s, --salt SALT        hash against an existing salt or hash")
	f(i, "-v, --verbose          print additional information")
	f(i, "--version              print version information")
	bw.Flush()
}

func parse() *config {
	conf := config{
		cost:   bcrypt.DefaultCost,
		repeat: 1,
	}

	options := []optparse.Option{
		{Long: "check", Short: 'C', Kind: optparse.KindRequired},
		{Long: "cost", Short: 'c', Kind: optparse.KindRequired},
		{Long: "help", Short: 'h', Kind: optparse.KindNone},
		{Long: "input", Short: 'i', Kind: optparse.KindRequired},
		{Long: "pinentry", Short: 0, Kind: optparse.KindOptional},
		{Long: "repeat", Short: 'r', Kind: optparse.KindRequired},
		{Long: "salt", Short: 's', Kind: optparse.KindRequired},
		{Long: "verbose", Short: 'v', Kind: optparse.KindNone},
		{Long: "version", Short: 0, Kind: optparse.KindNone},
	}

	var repeatSeen bool
	var costSeen bool

	results, rest, err := optparse.Parse(options, os.Args)
	if err != nil {
		usage(os.Stderr)
		fatal("%s", err)
	}
	for _, result := range results {
		switch result.Long {
		case "check":
			conf.check = result.Optarg
		case "cost":
			cost, err := strconv.Atoi(result.Optarg)
			if err != nil {
				fatal("--cost (-c): %s", err)
			}
			if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
				fatal("--cost (-c): must be %d-%d",
					bcrypt.MinCost, bcrypt.MaxCost)
			}
			conf.cost = cost
			costSeen = true
		case "help":
			usage(os.Stdout)
			os.Exit(0)
		case "input":
			conf.input = result.Optarg
		case "pinentry":
			if result.Optarg != "" {
				conf.pinentry = result.Optarg
			} else {
				conf.pinentry = "pinentry"
			}
		case "repeat":
			repeat, err := strconv.Atoi(result.Optarg)
			if err != nil {
				fatal("--repeat (-r): %s", err)
			}
			conf.repeat = repeat
			repeatSeen = true
		case "salt":
			conf.salt = result.Optarg
		case "verbose":
			conf.verbose = true
		case "version":
			fmt.Println("passphrase2bcrypt", version)
			os.Exit(0)
		}
	}

	if !costSeen {
		// Using os.Getenv instead of os.LookupEnv because empty is just
		// as good as not set.
		if env := os.Getenv("BCRYPT_COST"); env != "" {
			cost, err := strconv.Atoi(env)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: $BCRYPT_COST invalid, ignoring it\n")
			} else {
				conf.cost = cost
			}
		}
	}

	if conf.check != "" && !repeatSeen {
		// No point confirming a passphrase that is only being checked.
		conf.repeat = 0
	}

	if len(rest) > 0 {
		fatal("too many arguments")
	}
	return &conf
}

func main() {
	config := parse()

	var passphrase []byte
	var err error
	if config.input != "" {
		passphrase, err = firstLine(config.input)
	} else {
		passphrase, err = readPassphrase(config.pinentry, config.repeat)
	}
	if err != nil {
		fatal("%s", err)
	}
	if len(passphrase) > 72 {
		fmt.Fprintln(os.Stderr, "warning: passphrase bytes beyond 72 are ignored")
	}

	if config.check != "" {
		if config.verbose {
			if cost, err := bcrypt.Cost(config.check); err == nil {
				fmt.Fprintf(os.Stderr, "Cost: %d\n", cost)
			}
		}
		ok, err := bcrypt.Verify(passphrase, config.check)
		if err != nil {
			fatal("%s", err)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "passphrase2bcrypt: passphrase does not match")
			os.Exit(1)
		}
		if config.verbose {
			fmt.Fprintln(os.Stderr, "passphrase matches")
		}
		return
	}

	salt := config.salt
	if salt == "" {
		salt, err = bcrypt.GenerateSalt(config.cost)
		if err != nil {
			fatal("%s", err)
		}
	}
	if config.verbose {
		if cost, err := bcrypt.Cost(salt); err == nil {
			fmt.Fprintf(os.Stderr, "Cost: %d\n", cost)
		}
	}
	hash, err := bcrypt.Hash(passphrase, salt)
	if err != nil {
		fatal("%s", err)
	}
	fmt.Println(hash)
}
