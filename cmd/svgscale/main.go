package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	svgscale "github.com/manlge/svg-scale"
	"github.com/tdewolff/argp"
)

type Scale struct {
	Scale     float64 `desc:"Scale factor applied to every length"`
	From      float64 `desc:"Source size, detected from the root width or viewBox when omitted"`
	To        string  `desc:"Comma-separated list of target sizes"`
	Precision int     `default:"4" desc:"Number of decimals of rewritten numbers"`
	FixStroke bool    `name:"fix-stroke" desc:"Scale non-scaling strokes and drop their vector-effect"`
	OutDir    string  `name:"out-dir" desc:"Directory receiving the scaled copies"`
	PNG       bool    `name:"png" desc:"Rasterize each output with rsvg-convert"`
	Output    string  `short:"o" desc:"Output file, writes to stdout when omitted"`
	Input     string  `index:"0" desc:"Input SVG file"`
}

func main() {
	cmd := argp.NewCmd(&Scale{}, "Geometry-true SVG rescaler")
	cmd.Parse()
	cmd.PrintHelp()
}

func (cmd *Scale) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}

	data, err := os.ReadFile(cmd.Input)
	if err != nil {
		return err
	}

	if cmd.To == "" {
		factor := cmd.Scale
		if factor == 0.0 {
			return fmt.Errorf("either --scale or --to must be given")
		}
		out, err := cmd.rescale(data, factor)
		if err != nil {
			return err
		}
		return cmd.write(cmd.outputName(0.0), out, 0.0)
	}

	from := cmd.From
	if from == 0.0 {
		if from, err = detectSize(data); err != nil {
			return fmt.Errorf("%s: %w", cmd.Input, err)
		}
	}
	for _, field := range strings.Split(cmd.To, ",") {
		to, _, err := svgscale.ParseLength(strings.TrimSpace(field))
		if err != nil || to <= 0.0 {
			return fmt.Errorf("bad target size %q", field)
		}
		out, err := cmd.rescale(data, to/from)
		if err != nil {
			return err
		}
		if err = cmd.write(cmd.outputName(to), out, to); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *Scale) rescale(data []byte, factor float64) ([]byte, error) {
	sb := &bytes.Buffer{}
	err := svgscale.Rescale(sb, bytes.NewReader(data), svgscale.Options{
		Scale:     factor,
		Precision: cmd.Precision,
		FixStroke: cmd.FixStroke,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Input, err)
	}
	return sb.Bytes(), nil
}

// outputName picks the destination file: the explicit output when given, a
// size-suffixed copy in the output directory for batch targets, or empty for
// stdout.
func (cmd *Scale) outputName(size float64) string {
	if cmd.Output != "" && cmd.Output != "-" {
		return cmd.Output
	}
	if cmd.OutDir == "" {
		return ""
	}
	name := filepath.Base(cmd.Input)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if size != 0.0 {
		stem += "-" + svgscale.Dec(size, 0)
	}
	return filepath.Join(cmd.OutDir, stem+".svg")
}

func (cmd *Scale) write(filename string, data []byte, size float64) error {
	if filename == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}
	if cmd.PNG {
		return rasterize(filename, size)
	}
	return nil
}

// rasterize hands the written file to rsvg-convert.
func rasterize(filename string, size float64) error {
	png := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".png"
	args := []string{"-o", png}
	if size != 0.0 {
		args = append(args, "-w", svgscale.Dec(size, 0), "-h", svgscale.Dec(size, 0))
	}
	args = append(args, filename)
	out, err := exec.Command("rsvg-convert", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("rsvg-convert %s: %v: %s", filename, err, bytes.TrimSpace(out))
	}
	return nil
}

// detectSize finds the intrinsic size of the document: the root width
// attribute when it is an absolute length, else the width of the viewBox.
func detectSize(data []byte) (float64, error) {
	doc, err := svgscale.ParseDocument(bytes.NewReader(data))
	if err != nil {
		return 0.0, err
	}
	root := doc.Root()
	if root == -1 {
		return 0.0, fmt.Errorf("no root element")
	}
	if w, ok := doc.Attr(root, "width"); ok {
		if f, unit, err := svgscale.ParseLength(w); err == nil && unit != svgscale.Percent && 0.0 < f {
			return f, nil
		}
	}
	if vb, ok := doc.Attr(root, "viewBox"); ok {
		if fields := strings.Fields(strings.ReplaceAll(vb, ",", " ")); len(fields) == 4 {
			if f, _, err := svgscale.ParseLength(fields[2]); err == nil && 0.0 < f {
				return f, nil
			}
		}
	}
	return 0.0, fmt.Errorf("cannot determine size, use --from")
}
