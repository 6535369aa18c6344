// Package composer reads the parts of a Composer project the npm bridge needs.
//
// A project is described by its root composer.json and by the local
// repository Composer writes to vendor/composer/installed.json. Both the
// Composer 1 format (a top-level array) and the Composer 2 format (an object
// with a "packages" key) are understood.
//
// # Install Paths
//
// Composer 2 records each package's install path relative to the
// vendor/composer directory. When the field is absent, packages are assumed
// to live in <vendor-dir>/<name>. The vendor directory honours the
// config.vendor-dir setting of the root composer.json.
//
// # Usage
//
//	project, err := composer.Load(".")
//	if err != nil {
//	    return err
//	}
//	for _, pkg := range project.Packages {
//	    fmt.Println(pkg.Name, pkg.InstallPath)
//	}
package composer
