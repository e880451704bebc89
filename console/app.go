package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/nvr-ai/go-anpr/controller"
	"github.com/nvr-ai/go-anpr/detector"
	"github.com/nvr-ai/go-anpr/images"
	"github.com/nvr-ai/go-anpr/registry"
	"gocv.io/x/gocv"
)

// PlateDetector runs the plate detection pipeline on a decoded image.
type PlateDetector interface {
	Detect(ctx context.Context, img gocv.Mat) (detector.Detection, error)
}

// App is the interactive menu: check a vehicle, list the registry, exit.
type App struct {
	Console      *Console
	Detector     PlateDetector
	Reconciler   *controller.Reconciler
	Registry     registry.Registry
	Display      Display
	DefaultImage string
}

const menu = `
==== License Plate Recognition ====
1. Check / register vehicle
2. List registered vehicles
3. Exit
`

// Run loops over the menu until the operator exits, the input ends or ctx is done.
// Failures of a single check are reported and the loop continues.
func (a *App) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.Console.Printf("%s", menu)
		choice, err := a.Console.ReadLine("Enter your choice: ")
		if err != nil {
			return a.finish(err)
		}

		switch choice {
		case "1":
			err = a.checkVehicle(ctx)
		case "2":
			err = a.listVehicles(ctx)
		case "3":
			return a.finish(nil)
		default:
			a.Console.Printf("Invalid choice, please try again.\n")
			continue
		}

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return a.finish(err)
			}
			log.Printf("operation failed: %v", err)
			a.Console.Printf("Error: %v\n", err)
		}
	}
}

func (a *App) finish(err error) error {
	a.Console.Printf("Goodbye!\n")
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// CheckImage runs detection and reconciliation for one image path.
func (a *App) CheckImage(ctx context.Context, path string) error {
	img, err := images.Load(path)
	if err != nil {
		return err
	}
	defer img.Close()

	det, err := a.Detector.Detect(ctx, img)
	if err != nil {
		return err
	}
	defer det.Close()

	a.Console.Printf("%s\n", det.Message())

	var reconcileErr error
	if det.Status == detector.PlateFound {
		out, err := a.Reconciler.Reconcile(ctx, det.Text)
		if err != nil {
			reconcileErr = fmt.Errorf("reconcile %s: %w", det.Text, err)
		} else {
			a.Console.Printf("%s\n", out.Message())
		}
	}

	if a.Display != nil {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_" + det.Status.String()
		saved, err := a.Display.Show(det.Image, name)
		if err != nil {
			log.Printf("display failed: %v", err)
		} else if saved != "" {
			a.Console.Printf("Result image saved to %s\n", saved)
		}
	}
	return reconcileErr
}

func (a *App) checkVehicle(ctx context.Context) error {
	prompt := "Enter image path: "
	if a.DefaultImage != "" {
		prompt = fmt.Sprintf("Enter image path [%s]: ", a.DefaultImage)
	}
	path, err := a.Console.ReadLine(prompt)
	if err != nil {
		return err
	}
	if path == "" {
		path = a.DefaultImage
	}
	if path == "" {
		a.Console.Printf("No image path given.\n")
		return nil
	}
	return a.CheckImage(ctx, path)
}

func (a *App) listVehicles(ctx context.Context) error {
	records, err := a.Registry.ListAll(ctx)
	if err != nil {
		return err
	}
	PrintRecords(a.Console.out, records)
	return nil
}
