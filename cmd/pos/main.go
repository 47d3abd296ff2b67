// Command pos is the cashier terminal.  It hydrates table state from
// the order-store server, then serves an interactive prompt where the
// cashier switches tables, edits orders and settles bills.  Every edit
// applies locally at once; persistence is deferred, batched per table
// and flushed on table switch, manual save, payment and exit.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hviet/smile-pos/internal/catalog"
	"github.com/hviet/smile-pos/internal/client"
	"github.com/hviet/smile-pos/internal/config"
	"github.com/hviet/smile-pos/internal/session"
)

func main() {
	cfg := config.LoadClient()
	cat := catalog.Default()
	api := client.New(cfg.APIBaseURL)
	sess := session.New(cat, api, api)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := sess.Hydrate(ctx); err != nil {
		log.Printf("could not load orders from %s: %v (starting empty)", cfg.APIBaseURL, err)
	}
	cancel()
	sess.SetCurrentTable(1)

	// Flush everything on Ctrl-C as well as on a clean quit.  Best
	// effort: a dead server just leaves the edits in memory to die
	// with the process.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		shutdown(sess)
		os.Exit(0)
	}()

	fmt.Println("smile-pos terminal. Type 'help' for commands.")
	sc := bufio.NewScanner(os.Stdin)
	for prompt(sess); sc.Scan(); prompt(sess) {
		args := strings.Fields(sc.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			break
		}
		run(sess, cat, args)
	}
	shutdown(sess)
}

func prompt(sess *session.Session) {
	id, _ := sess.CurrentTable()
	if t, ok := sess.Table(id); ok {
		badge := ""
		if n := sess.PendingCount(id); n > 0 {
			badge = fmt.Sprintf(" [%d unsaved]", n)
		}
		fmt.Printf("%s%s> ", t.Name, badge)
		return
	}
	fmt.Print("> ")
}

func shutdown(sess *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sess.Shutdown(ctx)
}

func run(sess *session.Session, cat *catalog.Catalog, args []string) {
	cur, _ := sess.CurrentTable()
	switch args[0] {
	case "help":
		fmt.Print(`tables                 list tables
table N                select table N
menu                   list the menu
add CODE [QTY]         add a dish
qty CODE N             set a dish's quantity (0 removes)
rm CODE                remove a dish
note CODE TEXT...      set a dish's note
bill [DISC] [SHIP]     preview the bill
save                   push unsaved edits now
pay [DISC] [SHIP]      settle the bill
quit                   flush everything and exit
`)
	case "tables":
		for _, t := range sess.Tables() {
			marker := " "
			if t.IsOrdered {
				marker = "*"
			}
			fmt.Printf("%s %2d %-10s %d items, %d unsaved\n", marker, t.ID, t.Name, len(t.Orders), sess.PendingCount(t.ID))
		}
	case "table":
		id, err := argInt(args, 1)
		if err != nil {
			fmt.Println("usage: table N")
			return
		}
		if _, ok := sess.Table(id); !ok {
			fmt.Println("no such table")
			return
		}
		sess.SetCurrentTable(id)
	case "menu":
		for _, d := range cat.All() {
			fmt.Printf("%-4s %-22s %8.0f\n", d.ID, d.Name, d.Price)
		}
	case "add":
		if len(args) < 2 {
			fmt.Println("usage: add CODE [QTY]")
			return
		}
		dish, ok := cat.ByID(strings.ToUpper(args[1]))
		if !ok {
			fmt.Println("unknown dish code")
			return
		}
		qty := 1
		if n, err := argInt(args, 2); err == nil {
			qty = n
		}
		sess.AddOrder(cur, dish, qty)
	case "qty":
		n, err := argInt(args, 2)
		if len(args) < 3 || err != nil {
			fmt.Println("usage: qty CODE N")
			return
		}
		sess.UpdateQuantity(cur, strings.ToUpper(args[1]), n)
	case "rm":
		if len(args) < 2 {
			fmt.Println("usage: rm CODE")
			return
		}
		sess.RemoveItem(cur, strings.ToUpper(args[1]))
	case "note":
		if len(args) < 3 {
			fmt.Println("usage: note CODE TEXT...")
			return
		}
		sess.UpdateNote(cur, strings.ToUpper(args[1]), strings.Join(args[2:], " "))
	case "bill", "pay":
		discount, _ := argFloat(args, 1)
		shipFee, _ := argFloat(args, 2)
		if args[0] == "bill" {
			printBill(sess, cur, discount, shipFee)
			return
		}
		settle(sess, cur, discount, shipFee)
	case "save":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		res, err := sess.SaveCurrent(ctx)
		if err != nil {
			fmt.Printf("save failed: %v\n", err)
			return
		}
		if !res.OK {
			fmt.Printf("saved %d change(s), %d failed and will retry\n", res.Flushed, res.Failed)
			return
		}
		fmt.Println("all changes saved")
	default:
		fmt.Println("unknown command; try 'help'")
	}
}

func printBill(sess *session.Session, tableID int, discount, shipFee float64) {
	t, ok := sess.Table(tableID)
	if !ok {
		return
	}
	var subtotal float64
	for _, line := range t.Orders {
		lineTotal := line.Dish.Price * float64(line.Quantity)
		subtotal += lineTotal
		note := ""
		if line.Note != "" {
			note = " (" + line.Note + ")"
		}
		fmt.Printf("  %dx %-22s %10.0f%s\n", line.Quantity, line.Dish.Name, lineTotal, note)
	}
	fmt.Printf("  subtotal %.0f, discount input %.0f, ship %.0f\n", subtotal, discount, shipFee)
}

func settle(sess *session.Session, tableID int, discount, shipFee float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	bill, err := sess.CompletePayment(ctx, tableID, discount, shipFee)
	if err != nil {
		fmt.Printf("payment failed: %v\n", err)
		return
	}
	fmt.Printf("paid: subtotal %.0f - discount %.0f + ship %.0f = %.0f\n",
		bill.Subtotal, bill.Discount, bill.ShipFee, bill.Total)
}

func argInt(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.Atoi(args[i])
}

func argFloat(args []string, i int) (float64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.ParseFloat(args[i], 64)
}
