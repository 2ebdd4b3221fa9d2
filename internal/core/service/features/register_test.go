package features

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/rl1809/pos-register/internal/adapter/storage"
	"github.com/rl1809/pos-register/internal/core/domain"
	"github.com/rl1809/pos-register/internal/core/service"
)

type registerTestContext struct {
	svc      *service.RegisterService
	order    domain.Order
	customer domain.Customer
	err      error
}

func (c *registerTestContext) anEmptyRegister() error {
	products, err := storage.DefaultCatalog()
	if err != nil {
		return err
	}
	c.svc = service.NewRegisterService(service.Repositories{
		Catalog:   storage.NewMemoryCatalog(products),
		Cart:      storage.NewMemoryCart(),
		Ledger:    storage.NewMemoryLedger(),
		Customers: storage.NewMemoryCustomers(),
	}, 0)
	c.order = domain.Order{}
	c.customer = domain.Customer{}
	c.err = nil
	return nil
}

func (c *registerTestContext) iAddProductToTheCart(productID int64) error {
	return c.svc.AddItem(context.Background(), productID)
}

func (c *registerTestContext) iRemoveCartLine(index int) error {
	return c.svc.RemoveItem(context.Background(), index)
}

func (c *registerTestContext) iEnterADiscountOf(raw string) error {
	return c.svc.SetDiscount(context.Background(), raw)
}

func (c *registerTestContext) iCommitTheOrder() error {
	c.order, c.err = c.svc.CommitOrder(context.Background(), service.CommitRequest{})
	return nil
}

func (c *registerTestContext) iRegisterACustomerNamedWithEmail(name, email string) error {
	c.customer, c.err = c.svc.RegisterCustomer(context.Background(), name, email)
	return nil
}

func (c *registerTestContext) totals() (domain.DisplayTotals, error) {
	view, err := c.svc.GetCartView(context.Background())
	if err != nil {
		return domain.DisplayTotals{}, err
	}
	return view.Totals.Display(), nil
}

func (c *registerTestContext) theSubtotalIs(want string) error {
	totals, err := c.totals()
	if err != nil {
		return err
	}
	if totals.Subtotal != want {
		return fmt.Errorf("expected subtotal %s, got %s", want, totals.Subtotal)
	}
	return nil
}

func (c *registerTestContext) theDiscountAmountIs(want string) error {
	totals, err := c.totals()
	if err != nil {
		return err
	}
	if totals.DiscountAmount != want {
		return fmt.Errorf("expected discount amount %s, got %s", want, totals.DiscountAmount)
	}
	return nil
}

func (c *registerTestContext) theTotalIs(want string) error {
	totals, err := c.totals()
	if err != nil {
		return err
	}
	if totals.Total != want {
		return fmt.Errorf("expected total %s, got %s", want, totals.Total)
	}
	return nil
}

func (c *registerTestContext) theCartHasLines(want int) error {
	view, err := c.svc.GetCartView(context.Background())
	if err != nil {
		return err
	}
	if len(view.Lines) != want {
		return fmt.Errorf("expected %d cart lines, got %d", want, len(view.Lines))
	}
	return nil
}

func (c *registerTestContext) theCommitFailsBecauseTheCartIsEmpty() error {
	if !errors.Is(c.err, service.ErrEmptyCart) {
		return fmt.Errorf("expected empty cart error, got %v", c.err)
	}
	return nil
}

func (c *registerTestContext) theOrderIdIs(want int64) error {
	if c.err != nil {
		return fmt.Errorf("expected order but got error: %v", c.err)
	}
	if c.order.ID != want {
		return fmt.Errorf("expected order id %d, got %d", want, c.order.ID)
	}
	return nil
}

func (c *registerTestContext) theLedgerHoldsOrders(want int) error {
	orders, err := c.svc.ListOrders(context.Background())
	if err != nil {
		return err
	}
	if len(orders) != want {
		return fmt.Errorf("expected %d orders, got %d", want, len(orders))
	}
	return nil
}

func (c *registerTestContext) orderHasItems(orderID int64, want int) error {
	order, err := c.svc.GetOrder(context.Background(), orderID)
	if err != nil {
		return err
	}
	if len(order.Items) != want {
		return fmt.Errorf("expected %d items on order %d, got %d", want, orderID, len(order.Items))
	}
	return nil
}

func (c *registerTestContext) theRegistrationFailsWithAMissingField() error {
	if !errors.Is(c.err, service.ErrMissingField) {
		return fmt.Errorf("expected missing field error, got %v", c.err)
	}
	return nil
}

func (c *registerTestContext) theCustomerIdIs(want string) error {
	if c.err != nil {
		return fmt.Errorf("expected customer but got error: %v", c.err)
	}
	if c.customer.ID != want {
		return fmt.Errorf("expected customer id %s, got %s", want, c.customer.ID)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &registerTestContext{}

	// Given steps
	ctx.Step(`^an empty register$`, tc.anEmptyRegister)

	// When steps
	ctx.Step(`^I add product (\d+) to the cart$`, tc.iAddProductToTheCart)
	ctx.Step(`^I remove cart line (\d+)$`, tc.iRemoveCartLine)
	ctx.Step(`^I enter a discount of "([^"]*)"$`, tc.iEnterADiscountOf)
	ctx.Step(`^I commit the order$`, tc.iCommitTheOrder)
	ctx.Step(`^I register a customer named "([^"]*)" with email "([^"]*)"$`, tc.iRegisterACustomerNamedWithEmail)

	// Then steps
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.theSubtotalIs)
	ctx.Step(`^the discount amount is "([^"]*)"$`, tc.theDiscountAmountIs)
	ctx.Step(`^the total is "([^"]*)"$`, tc.theTotalIs)
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the commit fails because the cart is empty$`, tc.theCommitFailsBecauseTheCartIsEmpty)
	ctx.Step(`^the order id is (\d+)$`, tc.theOrderIdIs)
	ctx.Step(`^the ledger holds (\d+) orders?$`, tc.theLedgerHoldsOrders)
	ctx.Step(`^order (\d+) has (\d+) items?$`, tc.orderHasItems)
	ctx.Step(`^the registration fails with a missing field$`, tc.theRegistrationFailsWithAMissingField)
	ctx.Step(`^the customer id is "([^"]*)"$`, tc.theCustomerIdIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"register.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
