package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"cflagd/internal/common"
	"cflagd/internal/flags"
)

// cflags is a lightweight client invoked by an editor host plugin:
// > cflags some/file.c
// It pipes the query to a running cflagd via unix socket and prints the returned
// compiler flags one per line. If the daemon is not running, flags are resolved
// in-process with built-in defaults, so the host always gets an answer.
func main() {
	sockPath := common.CmdEnvString("Path to the cflagd unix socket.", "/run/cflagd.sock",
		"sock", "CFLAGD_SOCK")
	showVersionAndExit := common.CmdEnvBool("Show version and exit.", false,
		"version", "")
	showVersionAndExitShort := common.CmdEnvBool("Show version and exit.", false,
		"v", "")

	common.ParseCmdFlagsCombiningWithEnv()

	if *showVersionAndExit || *showVersionAndExitShort {
		fmt.Println(common.GetVersion())
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		exitOnError(fmt.Errorf("usage: cflags [-sock path] {file}"))
	}
	filePath := flag.Arg(0)

	c, err := net.Dial("unix", *sockPath)
	if err != nil {
		resolveLocally(filePath)
	}
	defer c.Close()

	sendRequest(c, filePath)
	exitCode := readResponse(c, filePath)

	os.Exit(exitCode)
}

func exitOnError(err error) {
	os.Stderr.WriteString("[cflags] " + err.Error() + "\n")
	os.Stderr.Close()
	os.Exit(1)
}

// resolveLocally computes flags without a daemon and never returns.
// Project overrides are a daemon feature; here only built-in defaults apply.
func resolveLocally(filePath string) {
	provider, err := flags.MakeProviderFromEnv()
	if err != nil {
		exitOnError(err)
	}

	settings := provider.SettingsForFile(filePath, flags.Options{})
	printFlags(settings.Flags)
	os.Exit(0)
}

func printFlags(allFlags []string) {
	out := bufio.NewWriter(os.Stdout)
	for _, token := range allFlags {
		out.WriteString(token)
		out.WriteByte('\n')
	}
	_ = out.Flush()
}

func sendRequest(conn net.Conn, filePath string) {
	_, err := conn.Write(fmt.Appendf(nil, "%s\b%s\000", filePath, ""))
	if err != nil {
		resolveLocally(filePath)
	}
}

func readResponse(conn net.Conn, filePath string) int {
	slice, err := bufio.NewReaderSize(conn, 16*1024).ReadSlice(0)
	if err != nil {
		resolveLocally(filePath)
	}

	responseParts := strings.Split(string(slice[0:len(slice)-1]), "\b") // -1 to strip off the trailing '\0'

	if len(responseParts) != 3 {
		resolveLocally(filePath)
	}

	exitCode, err := strconv.Atoi(responseParts[0])
	if err != nil {
		resolveLocally(filePath)
	}

	if responseParts[1] != "" {
		printFlags(strings.Split(responseParts[1], " "))
	}
	os.Stderr.WriteString(responseParts[2])

	return exitCode
}
