// Command cheekyfs manages CHEEKY/SNEAKY disk images: a single fixed-size
// file standing in for a block device, formatted and mutated through the
// same ten operations the fsys package exposes to Go callers.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/PatSmuk/cheekyfs/block"
	"github.com/PatSmuk/cheekyfs/fsys"
)

func main() {
	app := &cli.App{
		Name:  "cheekyfs",
		Usage: "Create and inspect CHEEKY/SNEAKY filesystem images",
		Commands: []*cli.Command{
			{
				Name:      "mkfs",
				Usage:     "Format a new image, or wipe an existing one",
				ArgsUsage: "IMAGE",
				Action:    mkfs,
			},
			{
				Name:      "ls",
				Usage:     "List the contents of a directory",
				ArgsUsage: "IMAGE PATH",
				Action:    ls,
			},
			{
				Name:      "mkdir",
				Usage:     "Create a directory",
				ArgsUsage: "IMAGE PATH",
				Action:    mkdir,
			},
			{
				Name:      "cat",
				Usage:     "Print a file's contents to stdout",
				ArgsUsage: "IMAGE PATH",
				Action:    cat,
			},
			{
				Name:      "write",
				Usage:     "Create a file with the contents of stdin",
				ArgsUsage: "IMAGE PATH",
				Action:    write,
			},
			{
				Name:      "rm",
				Usage:     "Delete a file or empty directory",
				ArgsUsage: "IMAGE PATH",
				Action:    rm,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("cheekyfs: %s", err)
	}
}

func openImage(path string, erase bool) (*fsys.FileSystem, *block.FileDevice, error) {
	dev, err := block.OpenFileDevice(path, fsys.BlockSize, fsys.MaxBlocks)
	if err != nil {
		return nil, nil, err
	}
	fs := fsys.New()
	if err := fs.Initialize(dev, erase); err != nil {
		dev.Close()
		return nil, nil, err
	}
	return fs, dev, nil
}

func mkfs(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("usage: cheekyfs mkfs IMAGE")
	}
	_, dev, err := openImage(path, true)
	if err != nil {
		return err
	}
	return dev.Close()
}

func ls(c *cli.Context) error {
	path, dirPath, err := imageAndPath(c)
	if err != nil {
		return err
	}
	fs, dev, err := openImage(path, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	fd, err := fs.Open(dirPath)
	if err != nil {
		return err
	}
	defer fs.Close(fd)

	for {
		entry, err := fs.ReadDir(fd)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", entry.Type, entry.Name)
	}
	return nil
}

func mkdir(c *cli.Context) error {
	path, dirPath, err := imageAndPath(c)
	if err != nil {
		return err
	}
	fs, dev, err := openImage(path, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	return fs.Create(dirPath, fsys.TypeDir)
}

func cat(c *cli.Context) error {
	path, filePath, err := imageAndPath(c)
	if err != nil {
		return err
	}
	fs, dev, err := openImage(path, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	fd, err := fs.Open(filePath)
	if err != nil {
		return err
	}
	defer fs.Close(fd)

	size, err := fs.GetSize(filePath)
	if err != nil {
		return err
	}

	buf := make([]byte, fsys.BlockSize)
	var offset uint32
	for offset < size {
		n := size - offset
		if n > fsys.BlockSize {
			n = fsys.BlockSize
		}
		read, err := fs.Read(fd, offset, buf[:n])
		if err != nil {
			return err
		}
		os.Stdout.Write(buf[:read])
		offset += uint32(read)
	}
	return nil
}

func write(c *cli.Context) error {
	path, filePath, err := imageAndPath(c)
	if err != nil {
		return err
	}
	fs, dev, err := openImage(path, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := fs.Create(filePath, fsys.TypeData); err != nil {
		return err
	}
	fd, err := fs.Open(filePath)
	if err != nil {
		return err
	}
	defer fs.Close(fd)

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	var offset uint32
	for offset < uint32(len(data)) {
		end := offset + fsys.BlockSize
		if end > uint32(len(data)) {
			end = uint32(len(data))
		}
		// Every chunk is appended at the current end of file: the file
		// was just created empty, so there's nothing to overwrite yet.
		n, err := fs.Write(fd, -1, data[offset:end])
		if err != nil {
			return err
		}
		offset += uint32(n)
	}
	return nil
}

func rm(c *cli.Context) error {
	path, targetPath, err := imageAndPath(c)
	if err != nil {
		return err
	}
	fs, dev, err := openImage(path, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	return fs.Delete(targetPath)
}

func imageAndPath(c *cli.Context) (image string, path string, err error) {
	if c.Args().Len() < 2 {
		return "", "", fmt.Errorf("usage: cheekyfs %s IMAGE PATH", c.Command.Name)
	}
	return c.Args().Get(0), c.Args().Get(1), nil
}
