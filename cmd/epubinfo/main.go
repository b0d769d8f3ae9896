package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	epub "github.com/danigm/go-epub"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "epubinfo",
		Short:         "Inspect EPUB files",
		Long:          "epubinfo is a command-line tool for inspecting EPUB publications:\nmetadata, manifest, spine, table of contents, and embedded resources.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInfoCmd(),
		newManifestCmd(),
		newSpineCmd(),
		newTOCCmd(),
		newExtractCmd(),
		newCoverCmd(),
	)
	return root
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.epub>",
		Short: "Print package metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := epub.Open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()
			printInfo(cmd.OutOrStdout(), doc)
			return nil
		},
	}
}

func printInfo(w io.Writer, doc *epub.Document) {
	fmt.Fprintf(w, "version:  %s\n", doc.Version())
	fmt.Fprintf(w, "package:  %s\n", doc.PackagePath())
	fmt.Fprintf(w, "spine:    %d items\n", doc.SpineLen())
	if uid := doc.UniqueIdentifier(); uid != "" {
		fmt.Fprintf(w, "uid:      %s\n", uid)
	}
	if rid, ok := doc.ReleaseIdentifier(); ok {
		fmt.Fprintf(w, "release:  %s\n", rid)
	}
	if ppd := doc.PageProgressionDirection(); ppd != "" {
		fmt.Fprintf(w, "ppd:      %s\n", ppd)
	}
	md := doc.Metadata()
	for _, key := range md.Keys() {
		for _, v := range md.Get(key) {
			fmt.Fprintf(w, "%s: %s\n", key, v)
		}
	}
}

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <file.epub>",
		Short: "List manifest items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := epub.Open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()
			w := cmd.OutOrStdout()
			for _, item := range doc.Manifest() {
				props := ""
				if len(item.Properties) > 0 {
					props = " [" + strings.Join(item.Properties, " ") + "]"
				}
				fmt.Fprintf(w, "%s\t%s\t%s%s\n", item.ID, item.MediaType, item.Href, props)
			}
			return nil
		},
	}
}

func newSpineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spine <file.epub>",
		Short: "List spine items in reading order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := epub.Open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()
			w := cmd.OutOrStdout()
			for i, si := range doc.Spine() {
				item, _ := doc.ItemByID(si.IDRef)
				linear := ""
				if !si.Linear {
					linear = "\t(non-linear)"
				}
				fmt.Fprintf(w, "%d\t%s\t%s%s\n", i, si.IDRef, item.Href, linear)
			}
			return nil
		},
	}
}

func newTOCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toc <file.epub>",
		Short: "Print the table of contents tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := epub.Open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()
			printTOC(cmd.OutOrStdout(), doc.TOC(), 0)
			return nil
		},
	}
}

func printTOC(w io.Writer, points []epub.NavPoint, depth int) {
	for _, np := range points {
		fmt.Fprintf(w, "%s%s\t%s\n", strings.Repeat("  ", depth), np.Label, np.Href())
		printTOC(w, np.Children, depth+1)
	}
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file.epub>",
		Short: "Extract a resource by manifest id or archive path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			path, _ := cmd.Flags().GetString("path")
			output, _ := cmd.Flags().GetString("output")
			if (id == "") == (path == "") {
				return fmt.Errorf("exactly one of --id or --path is required")
			}

			doc, err := epub.Open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			var data []byte
			if id != "" {
				data, _, err = doc.ResourceByID(id)
			} else {
				data, err = doc.ResourceByPath(path)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
	cmd.Flags().String("id", "", "Manifest id of the resource")
	cmd.Flags().String("path", "", "Archive path of the resource")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newCoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cover <file.epub>",
		Short: "Extract the cover image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			maxWidth, _ := cmd.Flags().GetInt("max-width")

			doc, err := epub.Open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			cover, err := doc.Cover()
			if err != nil {
				return err
			}

			if output == "" {
				output = defaultCoverOutput(args[0], cover.Path)
			}

			if maxWidth > 0 {
				img, err := imaging.Decode(bytes.NewReader(cover.Data))
				if err != nil {
					return fmt.Errorf("decode cover %s: %w", cover.Path, err)
				}
				if img.Bounds().Dx() > maxWidth {
					img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
				}
				if err := imaging.Save(img, output); err != nil {
					return fmt.Errorf("save cover: %w", err)
				}
			} else if err := os.WriteFile(output, cover.Data, 0o644); err != nil {
				return err
			}

			log.Printf("cover: %s -> %s", cover.Path, output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file (default: derived from cover filename)")
	cmd.Flags().Int("max-width", 0, "Resize the cover down to this width (0 = keep original)")
	return cmd
}

// defaultCoverOutput derives an output filename next to the EPUB from
// the cover's own basename.
func defaultCoverOutput(epubPath, coverPath string) string {
	return filepath.Join(filepath.Dir(epubPath), filepath.Base(coverPath))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("epubinfo: %v", err)
	}
}
