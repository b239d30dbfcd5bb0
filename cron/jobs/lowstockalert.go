package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"vitastore.GO/config"
	"vitastore.GO/cron"
	inventoryRepo "vitastore.GO/model/repository/inventory"
	"vitastore.GO/service/notify"
	"vitastore.GO/service/summary"
)

func init() {
	cron.Register("lowstockalert", config.LowStockAlertSchedule(), LowStockAlertJob)
}

// LowStockAlert mails a digest of low-stock items and items expiring
// within 30 days. Nothing is sent when both lists are empty.
type LowStockAlert struct {
	DB        *gorm.DB
	Transport notify.Transport
	Renderer  *notify.Renderer
	Recipient string
}

// Run returns the number of low and expiring rows found and whether a mail went out.
func (a *LowStockAlert) Run(ctx context.Context, now time.Time) (low, expiring int, sent bool, err error) {
	items, err := inventoryRepo.NewItemRepository(a.DB).List(ctx, inventoryRepo.ItemFilter{})
	if err != nil {
		return 0, 0, false, fmt.Errorf("load items: %w", err)
	}

	var lowLines []notify.DigestLine
	for _, it := range items {
		if it.IsLowStock() {
			lowLines = append(lowLines, notify.DigestLine{
				Name: it.Name, SKU: it.SKU, Unit: it.Unit, Quantity: it.Quantity, MinStock: it.MinStock,
			})
		}
	}
	var expLines []notify.ExpiryLine
	for _, e := range summary.Expiring(items, now) {
		if !e.Soon() {
			break
		}
		expLines = append(expLines, notify.ExpiryLine{
			Name: e.Name, SKU: e.SKU, ExpiryDate: time.Time(*e.ExpiryDate).Format("2006-01-02"), DaysLeft: e.DaysUntilExpiry,
		})
	}
	low, expiring = len(lowLines), len(expLines)
	if low == 0 && expiring == 0 {
		return 0, 0, false, nil
	}
	if a.Recipient == "" {
		return low, expiring, false, nil
	}

	msg, err := a.Renderer.Digest(lowLines, expLines, now)
	if err != nil {
		return low, expiring, false, err
	}
	msg.To = a.Recipient
	sent, err = a.Transport.Send(ctx, msg)
	return low, expiring, sent, err
}

// LowStockAlertJob is the cron entry point. It wires its own DB and
// transport from the environment.
func LowStockAlertJob(args ...string) {
	db, err := config.NewDB()
	if err != nil {
		log.Printf("lowstockalert: db: %v", err)
		return
	}
	app := config.App()
	r, err := notify.NewRenderer(app.AppName, app.TimeZone)
	if err != nil {
		log.Printf("lowstockalert: renderer: %v", err)
		return
	}
	mail := config.LoadMailConfig()
	job := &LowStockAlert{DB: db, Transport: notify.NewTransport(mail), Renderer: r, Recipient: mail.Recipient}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	low, expiring, sent, err := job.Run(ctx, time.Now())
	if err != nil {
		log.Printf("lowstockalert: %v", err)
		return
	}
	log.Printf("lowstockalert: %d low, %d expiring, mail sent: %v", low, expiring, sent)
}
