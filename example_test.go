package layoutkit_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aretw0/layoutkit"
	"github.com/aretw0/layoutkit/pkg/adapters/memory"
	"github.com/aretw0/layoutkit/pkg/catalog"
)

// ExampleNew builds a layout from an in-memory catalog, saves it and reopens
// it in a fresh workspace.
func ExampleNew() {
	ctx := context.Background()

	cat, err := catalog.Parse([]byte(`{
		"first_name": {"label": "First Name", "editorType": "dxTextBox"},
		"email": {"label": "Email", "isRequired": true}
	}`), catalog.FormatJSON)
	if err != nil {
		log.Fatal(err)
	}

	// An empty dir keeps layouts in memory.
	kit := layoutkit.New("", layoutkit.WithCatalogLoader(memory.NewCatalogLoader(cat)))

	ws, err := kit.Workspace(ctx)
	if err != nil {
		log.Fatal(err)
	}

	c := ws.AddContainer("Contact")
	ws.UpdateContainerNodes(c.ID, ws.AvailableNodes()[:2])
	ws.UpdateAvailableNodes()
	fmt.Println("available:", len(ws.AvailableNodes()))

	saved, err := ws.SaveLayout(ctx, "Contact Form")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("saved:", saved.Filename)

	reopened, err := kit.Open(ctx, "")
	if err != nil {
		log.Fatal(err)
	}
	out, _ := json.Marshal(reopened.GetLayoutJSON())
	fmt.Println(string(out))

	// Output:
	// available: 1
	// saved: contact-form.json
	// [{"name":"Contact","itemType":"group","colCount":1,"items":[{"dataField":"first_name","editorType":"dxTextBox","label":{"text":"First Name"}},{"dataField":"email","editorType":"dxTextBox","label":{"text":"Email"},"isRequired":true}]}]
}
