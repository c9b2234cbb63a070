// Package cli wires the command line surface to the query flows. It is
// the outermost layer and the only place that reports errors to the user.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"star-go/internal/config"
	"star-go/internal/quote"
)

// Flag values that stand in for "flag given without a value".
const (
	// insiderAll queries recent activity across the whole market instead
	// of a fixed code list.
	insiderAll = "all"
	// watchList watches the symbol store's watch list instead of codes
	// given on the command line.
	watchList = "list"
)

type options struct {
	all    bool
	hold   bool
	margin bool
	cal    bool
	ignore bool

	insider    string
	code       string
	market     string
	topBuy     bool
	topSell    bool
	latestSz   bool
	latestSh   bool
	showDetail bool

	watch   string
	reverse bool
	limit   int
	page    int
	data    string
	file    string

	from string
	to   string
	span string

	lte   int
	gte   int
	under int
	above int
	lteb  int
	gtes  int

	grep    string
	remove  string
	exclude string
	contain string
	sort    string
}

// App carries the dependencies of one invocation.
type App struct {
	logger *zap.Logger
	cfg    config.Config
	opts   options
	flags  *pflag.FlagSet
	out    io.Writer
	now    func() time.Time
}

// NewRootCommand builds the star root command.
func NewRootCommand(logger *zap.Logger, cfg config.Config) *cobra.Command {
	app := &App{
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}

	cmd := &cobra.Command{
		Use:           "star [flags] [code1,code2,...,codeN]",
		Short:         "Star is a command line tool for STock Analysis and Research.",
		Long:          "Star fetches stock quotes, insider trading disclosures and a finance\ncalendar from Chinese financial data providers and prints them as tables.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.flags = cmd.Flags()
			app.out = cmd.OutOrStdout()
			return app.run(cmd, args)
		},
	}

	fs := cmd.Flags()
	o := &app.opts

	fs.BoolVarP(&o.all, "all", "a", false, "display all stocks")
	fs.BoolVarP(&o.hold, "hold", "o", false, "display held stocks only")
	fs.BoolVarP(&o.margin, "margin", "M", false, "display stocks that support margin trading")
	fs.BoolVarP(&o.cal, "cal", "C", false, "display the finance calendar of the coming month")
	fs.BoolVarP(&o.ignore, "ignore", "I", false, "display ignored (unwatched) stocks")

	fs.StringVarP(&o.insider, "insider", "i", "", "query insider trading records of the given codes; without a value, query recent market-wide activity")
	fs.Lookup("insider").NoOptDefVal = insiderAll
	fs.StringVar(&o.code, "code", "", "stock codes for the market-wide insider query")
	fs.StringVar(&o.market, "market", "", "markets for the insider query: SZM, SZGEM, SZSME, SHM; separated by \",\" or \"，\"")
	fs.BoolVar(&o.topBuy, "top-buy", false, "query top insider buys by value, use with --insider; span 1m~12m")
	fs.BoolVar(&o.topSell, "top-sell", false, "query top insider sells by value, use with --insider; span 1m~12m")
	fs.BoolVar(&o.latestSz, "latest-sz", false, "query latest insider tradings of the Shenzhen market, use with --insider")
	fs.BoolVar(&o.latestSh, "latest-sh", false, "query latest insider tradings of the Shanghai market, use with --insider")
	fs.BoolVar(&o.showDetail, "show-detail", false, "show individual trading records, use with --insider")

	fs.StringVarP(&o.watch, "watch", "w", "", "watch the given codes, or the whole watch list without a value")
	fs.Lookup("watch").NoOptDefVal = watchList

	fs.BoolVarP(&o.reverse, "reverse", "r", false, "sort in ascending order")
	fs.IntVarP(&o.limit, "limit", "l", config.DefaultLimit, "display limit of the current page")
	fs.IntVarP(&o.page, "page", "p", 0, "page index to display")
	fs.StringVarP(&o.data, "data", "d", "", "quote data provider, \"sina\" or \"tencent\"")
	fs.StringVarP(&o.file, "file", "f", "", "symbol file path, persisted for later runs")

	fs.StringVar(&o.from, "from", "", "beginning date of insider tradings, e.g. 2014/06/01")
	fs.StringVar(&o.to, "to", "", "ending date of insider tradings, e.g. 2015/07/09")
	fs.StringVar(&o.span, "span", "", "time span of insider tradings ahead of today, e.g. 3m or 10d")

	fs.IntVarP(&o.lte, "lte", "L", 0, "keep symbols whose upside potential is at most the given percentage")
	fs.IntVarP(&o.gte, "gte", "G", 0, "keep symbols whose upside potential is at least the given percentage")
	fs.IntVarP(&o.under, "under", "U", 0, "keep symbols whose star rating is at most the given value")
	fs.IntVarP(&o.above, "above", "A", 0, "keep symbols whose star rating is at least the given value")
	fs.IntVar(&o.lteb, "lteb", 0, "keep symbols whose price is near or below their buy price")
	fs.Lookup("lteb").NoOptDefVal = "0"
	fs.IntVar(&o.gtes, "gtes", 0, "keep symbols whose price is near or above their sell price")
	fs.Lookup("gtes").NoOptDefVal = "0"

	fs.StringVarP(&o.grep, "grep", "g", "", "keywords to grep in code, name or comment, separated by \",\"")
	fs.StringVar(&o.remove, "remove", "", "remove symbols matching the keywords in name or comment, separated by \",\"")
	fs.StringVarP(&o.exclude, "exclude", "e", "", "exclude codes beginning with the given prefixes, separated by \",\" or \"，\"")
	fs.StringVarP(&o.contain, "contain", "c", "", "keep codes beginning with the given prefixes, separated by \",\" or \"，\"")
	fs.StringVarP(&o.sort, "sort", "s", "", "sort field: code/star/price/targetp/incp/bdiff/sdiff/capacity/pe/pb; capacity, pe and pb need the tencent source")

	return cmd
}

func (a *App) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	switch {
	case len(args) > 1:
		return errors.New("input error, pass codes as one comma separated argument, or run \"star -h\" for help")
	case len(args) == 1:
		return a.runQuery(ctx, args[0])
	case a.opts.cal:
		return a.runCal(ctx)
	case a.insiderRequested():
		return a.runInsider(ctx)
	case a.flags.Changed("watch"):
		return a.runWatch(ctx)
	default:
		return a.runTrace(ctx)
	}
}

func (a *App) insiderRequested() bool {
	o := a.opts
	return a.flags.Changed("insider") || o.topBuy || o.topSell || o.latestSz || o.latestSh
}

// intOpt returns the flag value, or nil when it was not given. Flags with
// a meaningful zero value need this distinction.
func (a *App) intOpt(name string, v int) *int {
	if !a.flags.Changed(name) {
		return nil
	}
	return &v
}

func (a *App) quoteClient() (*quote.Client, error) {
	name := a.opts.data
	if name == "" {
		name = a.cfg.Quote.Provider
	}
	schema, err := quote.SchemaFor(name)
	if err != nil {
		return nil, err
	}
	return quote.NewClient(schema, a.logger, a.cfg.Quote.RateLimit, a.cfg.Quote.RateLimitBurst), nil
}

// splitCodes normalizes a comma separated code list, accepting the
// fullwidth comma and a trailing comma.
func splitCodes(v string) ([]string, error) {
	v = strings.ReplaceAll(v, "，", ",")
	for _, r := range v {
		if (r < '0' || r > '9') && r != ',' {
			return nil, fmt.Errorf("invalid code list %q, only digits and commas are supported", v)
		}
	}
	var codes []string
	for _, c := range strings.Split(strings.TrimRight(v, ","), ",") {
		if c != "" {
			codes = append(codes, c)
		}
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("invalid code list %q, no codes given", v)
	}
	if len(codes) > config.ChunkSize {
		return nil, fmt.Errorf("too many codes, at most %d are supported per query", config.ChunkSize)
	}
	return codes, nil
}

func elapsed(start time.Time) string {
	return fmt.Sprintf("%d ms", time.Since(start).Milliseconds())
}
