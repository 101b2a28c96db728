package steps

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/portsim-go/internal/application/simulation"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

const fuelTolerance = 0.01

type simulationContext struct {
	doc        *types.WorldDocument
	opts       world.Options
	controller *simulation.Controller

	queued     []types.Action
	lastResult *simulation.ActionResult
	report     *simulation.Report

	snapshot *types.WorldState
	rebuilt  *types.WorldState
}

func (sc *simulationContext) reset() {
	sc.doc = &types.WorldDocument{}
	sc.opts = world.Options{}
	sc.controller = nil
	sc.queued = nil
	sc.lastResult = nil
	sc.report = nil
	sc.snapshot = nil
	sc.rebuilt = nil
}

func (sc *simulationContext) ensureController() error {
	if sc.controller != nil {
		return nil
	}
	w, err := world.BuildWorld(sc.doc, sc.opts)
	if err != nil {
		return fmt.Errorf("failed to build world: %w", err)
	}
	c, err := simulation.NewController(w, simulation.WithRunID("bdd"))
	if err != nil {
		return err
	}
	sc.controller = c
	return nil
}

func (sc *simulationContext) requireUnbuilt() error {
	if sc.controller != nil {
		return fmt.Errorf("world already built; Given steps must come before actions")
	}
	return nil
}

func (sc *simulationContext) shipSpec(id string) (*types.ShipSpec, error) {
	for i := range sc.doc.Ships {
		if sc.doc.Ships[i].ID == id {
			return &sc.doc.Ships[i], nil
		}
	}
	return nil, fmt.Errorf("ship %s not declared", id)
}

func (sc *simulationContext) state() (types.WorldState, error) {
	if err := sc.ensureController(); err != nil {
		return types.WorldState{}, err
	}
	return sc.controller.Snapshot(context.Background())
}

// Given steps

func (sc *simulationContext) aPortAt(id string, lat, lon float64) error {
	if err := sc.requireUnbuilt(); err != nil {
		return err
	}
	sc.doc.Ports = append(sc.doc.Ports, types.PortSpec{ID: id, Latitude: lat, Longitude: lon})
	return nil
}

func (sc *simulationContext) aShipDockedAt(id, portID string, weightCapacity, fuel, maxFuel float64) error {
	if err := sc.requireUnbuilt(); err != nil {
		return err
	}
	sc.doc.Ships = append(sc.doc.Ships, types.ShipSpec{
		ID:     id,
		PortID: portID,
		Capacity: &navigation.CapacityConfig{
			TotalWeightCapacity:       weightCapacity,
			MaxAllContainers:          10,
			MaxBasicContainers:        10,
			MaxHeavyContainers:        10,
			MaxRefrigeratedContainers: 10,
			MaxLiquidContainers:       10,
			FuelConsumptionPerKm:      1.0,
			MaxFuelCapacity:           maxFuel,
		},
		Fuel: &fuel,
	})
	return nil
}

func (sc *simulationContext) shipAllowsAtMostHeavy(id string, limit int) error {
	if err := sc.requireUnbuilt(); err != nil {
		return err
	}
	spec, err := sc.shipSpec(id)
	if err != nil {
		return err
	}
	spec.Capacity.MaxHeavyContainers = limit
	return nil
}

func (sc *simulationContext) shipHoldsAtMostFuel(id string, maxFuel float64) error {
	if err := sc.requireUnbuilt(); err != nil {
		return err
	}
	spec, err := sc.shipSpec(id)
	if err != nil {
		return err
	}
	spec.Capacity.MaxFuelCapacity = maxFuel
	return nil
}

func (sc *simulationContext) aContainerAtPort(category, id string, weight float64, portID string) error {
	if err := sc.requireUnbuilt(); err != nil {
		return err
	}
	sc.doc.Containers = append(sc.doc.Containers, types.ContainerSpec{
		ID:       id,
		Weight:   weight,
		Category: category,
		PortID:   portID,
	})
	return nil
}

func (sc *simulationContext) theFuelPolicyIs(name string) error {
	if err := sc.requireUnbuilt(); err != nil {
		return err
	}
	policy, err := navigation.ParseFuelPolicy(name)
	if err != nil {
		return err
	}
	sc.opts.FuelPolicy = policy
	return nil
}

func (sc *simulationContext) theSailStrategyIs(name string, hops int) error {
	if err := sc.requireUnbuilt(); err != nil {
		return err
	}
	sc.opts.SailStrategy = navigation.NewSailStrategy(name, hops)
	return nil
}

func (sc *simulationContext) theQueuedActions(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("expected a header row and at least one action")
	}

	header := make(map[string]int)
	for i, cell := range table.Rows[0].Cells {
		header[cell.Value] = i
	}
	value := func(row int, column string) string {
		i, ok := header[column]
		if !ok {
			return ""
		}
		return strings.TrimSpace(table.Rows[row].Cells[i].Value)
	}

	for row := 1; row < len(table.Rows); row++ {
		ship := value(row, "ship")
		target := value(row, "target")

		switch types.ActionType(value(row, "type")) {
		case types.ActionLoad:
			sc.queued = append(sc.queued, types.LoadAction(ship, target))
		case types.ActionUnload:
			sc.queued = append(sc.queued, types.UnloadAction(ship, target))
		case types.ActionSail:
			sc.queued = append(sc.queued, types.SailAction(ship, target))
		case types.ActionRefuel:
			amount, err := strconv.ParseFloat(value(row, "amount"), 64)
			if err != nil {
				return fmt.Errorf("row %d: bad amount: %w", row, err)
			}
			sc.queued = append(sc.queued, types.RefuelAction(ship, amount))
		default:
			return fmt.Errorf("row %d: unknown action type %q", row, value(row, "type"))
		}
	}
	return nil
}

// When steps

func (sc *simulationContext) apply(action types.Action) error {
	if err := sc.ensureController(); err != nil {
		return err
	}
	result := sc.controller.Apply(context.Background(), action)
	sc.lastResult = &result
	return nil
}

func (sc *simulationContext) shipLoads(shipID, containerID string) error {
	return sc.apply(types.LoadAction(shipID, containerID))
}

func (sc *simulationContext) shipUnloads(shipID, containerID string) error {
	return sc.apply(types.UnloadAction(shipID, containerID))
}

func (sc *simulationContext) shipRefuels(shipID string, amount float64) error {
	return sc.apply(types.RefuelAction(shipID, amount))
}

func (sc *simulationContext) shipSailsTo(shipID, portID string) error {
	return sc.apply(types.SailAction(shipID, portID))
}

func (sc *simulationContext) theQueuedActionsAreAppliedInOrder() error {
	if err := sc.ensureController(); err != nil {
		return err
	}
	report := sc.controller.ApplyAll(context.Background(), sc.queued)
	sc.report = &report
	return nil
}

func (sc *simulationContext) theQueuedActionsAreAppliedWithWorkers(workers int) error {
	if err := sc.ensureController(); err != nil {
		return err
	}
	report := sc.controller.ApplyParallel(context.Background(), sc.queued, workers)
	sc.report = &report
	return nil
}

func (sc *simulationContext) iTakeASnapshotAndRebuild() error {
	state, err := sc.state()
	if err != nil {
		return err
	}
	sc.snapshot = &state

	doc := state.Document()
	w, err := world.BuildWorld(&doc, sc.opts)
	if err != nil {
		return fmt.Errorf("failed to rebuild world from snapshot: %w", err)
	}
	rebuilt := w.Snapshot()
	sc.rebuilt = &rebuilt
	return nil
}

// Then steps

func (sc *simulationContext) requireResult() (*simulation.ActionResult, error) {
	if sc.lastResult == nil {
		return nil, fmt.Errorf("no action has been applied")
	}
	return sc.lastResult, nil
}

func (sc *simulationContext) theActionShouldSucceed() error {
	r, err := sc.requireResult()
	if err != nil {
		return err
	}
	if r.Err != nil {
		return fmt.Errorf("expected success, got error: %w", r.Err)
	}
	if !r.Success {
		return fmt.Errorf("expected success, got rejection %q", r.Reason)
	}
	return nil
}

func (sc *simulationContext) theActionShouldBeRejectedWith(reason string) error {
	r, err := sc.requireResult()
	if err != nil {
		return err
	}
	return expectRejection(*r, reason)
}

func expectRejection(r simulation.ActionResult, reason string) error {
	if r.Err != nil {
		return fmt.Errorf("expected rejection %q, got error: %w", reason, r.Err)
	}
	if r.Success {
		return fmt.Errorf("expected rejection %q, but the action succeeded", reason)
	}
	if r.Reason != reason {
		return fmt.Errorf("expected rejection %q, got %q", reason, r.Reason)
	}
	return nil
}

func (sc *simulationContext) theActionShouldFailWith(kind string) error {
	r, err := sc.requireResult()
	if err != nil {
		return err
	}

	var target error
	switch kind {
	case "not found":
		target = shared.ErrNotFound
	case "invalid argument":
		target = shared.ErrInvalidArgument
	default:
		return fmt.Errorf("unknown error kind %q", kind)
	}

	if !errors.Is(r.Err, target) {
		return fmt.Errorf("expected %s error, got %v", kind, r.Err)
	}
	return nil
}

func (sc *simulationContext) shipShouldCarry(shipID string, count int) error {
	state, err := sc.state()
	if err != nil {
		return err
	}
	ship, ok := state.Ship(shipID)
	if !ok {
		return fmt.Errorf("ship %s not in snapshot", shipID)
	}
	if len(ship.Manifest) != count {
		return fmt.Errorf("expected ship %s to carry %d containers, got %d", shipID, count, len(ship.Manifest))
	}
	return nil
}

func (sc *simulationContext) portShouldStore(portID string, count int) error {
	state, err := sc.state()
	if err != nil {
		return err
	}
	p, ok := state.Port(portID)
	if !ok {
		return fmt.Errorf("port %s not in snapshot", portID)
	}
	if len(p.Containers) != count {
		return fmt.Errorf("expected port %s to store %d containers, got %d", portID, count, len(p.Containers))
	}
	return nil
}

func (sc *simulationContext) shipShouldBeDockedAt(shipID, portID string) error {
	state, err := sc.state()
	if err != nil {
		return err
	}
	ship, ok := state.Ship(shipID)
	if !ok {
		return fmt.Errorf("ship %s not in snapshot", shipID)
	}
	if ship.PortID != portID {
		return fmt.Errorf("expected ship %s at port %s, got %s", shipID, portID, ship.PortID)
	}
	return nil
}

func (sc *simulationContext) shipShouldHaveFuel(shipID string, fuel float64) error {
	state, err := sc.state()
	if err != nil {
		return err
	}
	ship, ok := state.Ship(shipID)
	if !ok {
		return fmt.Errorf("ship %s not in snapshot", shipID)
	}
	if math.Abs(ship.Fuel-fuel) > fuelTolerance {
		return fmt.Errorf("expected ship %s to have %.2f fuel, got %.2f", shipID, fuel, ship.Fuel)
	}
	return nil
}

func splitIDs(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func sameIDs(got, want []string) bool {
	if len(got) == 0 && len(want) == 0 {
		return true
	}
	return reflect.DeepEqual(got, want)
}

func (sc *simulationContext) portHistoryShouldBe(portID, list string) error {
	state, err := sc.state()
	if err != nil {
		return err
	}
	p, ok := state.Port(portID)
	if !ok {
		return fmt.Errorf("port %s not in snapshot", portID)
	}
	if want := splitIDs(list); !sameIDs(p.History, want) {
		return fmt.Errorf("expected port %s history %v, got %v", portID, want, p.History)
	}
	return nil
}

func (sc *simulationContext) portShouldHaveDockedShips(portID, list string) error {
	state, err := sc.state()
	if err != nil {
		return err
	}
	p, ok := state.Port(portID)
	if !ok {
		return fmt.Errorf("port %s not in snapshot", portID)
	}
	if want := splitIDs(list); !sameIDs(p.DockedShips, want) {
		return fmt.Errorf("expected port %s docked ships %v, got %v", portID, want, p.DockedShips)
	}
	return nil
}

func (sc *simulationContext) theSailShouldHaveRefuelledAt(list string) error {
	r, err := sc.requireResult()
	if err != nil {
		return err
	}
	if r.Response == nil {
		return fmt.Errorf("last action has no response")
	}
	if want := splitIDs(list); !sameIDs(r.Response.Hops, want) {
		return fmt.Errorf("expected hops %v, got %v", want, r.Response.Hops)
	}
	return nil
}

func (sc *simulationContext) actionCountsShouldBe(succeeded, rejected, failed int) error {
	if sc.report == nil {
		return fmt.Errorf("no batch has been applied")
	}
	if len(sc.report.Results) != len(sc.queued) {
		return fmt.Errorf("expected %d results, got %d", len(sc.queued), len(sc.report.Results))
	}
	for i, r := range sc.report.Results {
		if r.Index != i {
			return fmt.Errorf("result %d carries index %d", i, r.Index)
		}
	}
	if sc.report.Succeeded != succeeded || sc.report.Rejected != rejected || sc.report.Failed != failed {
		return fmt.Errorf("expected %d/%d/%d succeeded/rejected/failed, got %d/%d/%d",
			succeeded, rejected, failed, sc.report.Succeeded, sc.report.Rejected, sc.report.Failed)
	}
	return nil
}

func (sc *simulationContext) batchActionShouldBeRejectedWith(position int, reason string) error {
	if sc.report == nil {
		return fmt.Errorf("no batch has been applied")
	}
	if position < 1 || position > len(sc.report.Results) {
		return fmt.Errorf("action %d out of range", position)
	}
	return expectRejection(sc.report.Results[position-1], reason)
}

func (sc *simulationContext) theRebuiltWorldShouldMatch() error {
	if sc.snapshot == nil || sc.rebuilt == nil {
		return fmt.Errorf("no snapshot has been taken")
	}
	if !reflect.DeepEqual(*sc.snapshot, *sc.rebuilt) {
		return fmt.Errorf("rebuilt world differs from snapshot:\nwant %+v\ngot  %+v", *sc.snapshot, *sc.rebuilt)
	}
	return nil
}

func (sc *simulationContext) theSnapshotShouldListInHistory(shipID, portID string) error {
	if sc.snapshot == nil {
		return fmt.Errorf("no snapshot has been taken")
	}
	p, ok := sc.snapshot.Port(portID)
	if !ok {
		return fmt.Errorf("port %s not in snapshot", portID)
	}
	for _, id := range p.History {
		if id == shipID {
			return nil
		}
	}
	return fmt.Errorf("expected %s in history of port %s, got %v", shipID, portID, p.History)
}

func InitializeSimulationScenario(ctx *godog.ScenarioContext) {
	sc := &simulationContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a port "([^"]*)" at latitude (-?[0-9.]+) and longitude (-?[0-9.]+)$`, sc.aPortAt)
	ctx.Step(`^a ship "([^"]*)" docked at port "([^"]*)" with weight capacity ([0-9.]+) and ([0-9.]+) of ([0-9.]+) fuel$`, sc.aShipDockedAt)
	ctx.Step(`^ship "([^"]*)" allows at most (\d+) heavy containers?$`, sc.shipAllowsAtMostHeavy)
	ctx.Step(`^ship "([^"]*)" holds at most ([0-9.]+) fuel$`, sc.shipHoldsAtMostFuel)
	ctx.Step(`^an? (basic|heavy|refrigerated|liquid) container "([^"]*)" weighing ([0-9.]+) at port "([^"]*)"$`, sc.aContainerAtPort)
	ctx.Step(`^the fuel policy is "([^"]*)"$`, sc.theFuelPolicyIs)
	ctx.Step(`^the sail strategy is "([^"]*)" with at most (\d+) hops?$`, sc.theSailStrategyIs)
	ctx.Step(`^the queued actions:$`, sc.theQueuedActions)

	// When steps
	ctx.Step(`^ship "([^"]*)" loads container "([^"]*)"$`, sc.shipLoads)
	ctx.Step(`^ship "([^"]*)" unloads container "([^"]*)"$`, sc.shipUnloads)
	ctx.Step(`^ship "([^"]*)" refuels (-?[0-9.]+)$`, sc.shipRefuels)
	ctx.Step(`^ship "([^"]*)" sails to port "([^"]*)"$`, sc.shipSailsTo)
	ctx.Step(`^the queued actions are applied in order$`, sc.theQueuedActionsAreAppliedInOrder)
	ctx.Step(`^the queued actions are applied with (\d+) workers$`, sc.theQueuedActionsAreAppliedWithWorkers)
	ctx.Step(`^I take a snapshot and rebuild the world from it$`, sc.iTakeASnapshotAndRebuild)

	// Then steps
	ctx.Step(`^the action should succeed$`, sc.theActionShouldSucceed)
	ctx.Step(`^the action should be rejected with "([^"]*)"$`, sc.theActionShouldBeRejectedWith)
	ctx.Step(`^the action should fail with an? (not found|invalid argument) error$`, sc.theActionShouldFailWith)
	ctx.Step(`^ship "([^"]*)" should carry (\d+) containers?$`, sc.shipShouldCarry)
	ctx.Step(`^port "([^"]*)" should store (\d+) containers?$`, sc.portShouldStore)
	ctx.Step(`^ship "([^"]*)" should be docked at port "([^"]*)"$`, sc.shipShouldBeDockedAt)
	ctx.Step(`^ship "([^"]*)" should have ([0-9.]+) fuel$`, sc.shipShouldHaveFuel)
	ctx.Step(`^port "([^"]*)" history should be "([^"]*)"$`, sc.portHistoryShouldBe)
	ctx.Step(`^port "([^"]*)" should have docked ships "([^"]*)"$`, sc.portShouldHaveDockedShips)
	ctx.Step(`^the sail should have refuelled at "([^"]*)"$`, sc.theSailShouldHaveRefuelledAt)
	ctx.Step(`^(\d+) actions should succeed, (\d+) should be rejected and (\d+) should fail$`, sc.actionCountsShouldBe)
	ctx.Step(`^action (\d+) should be rejected with "([^"]*)"$`, sc.batchActionShouldBeRejectedWith)
	ctx.Step(`^the rebuilt world should match the snapshot$`, sc.theRebuiltWorldShouldMatch)
	ctx.Step(`^the snapshot should list "([^"]*)" in the history of port "([^"]*)"$`, sc.theSnapshotShouldListInHistory)
}
