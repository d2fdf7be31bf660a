/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package example is a small domain of people, their homes and children,
// declared as management objects for the demo CLI and tests.
package example

import (
	"fmt"
	"net/url"
	"time"

	"dirpx.dev/mgmt/collections"
	"dirpx.dev/mgmt/mvalue"
)

// Domain is the identity domain of the example objects.
const Domain = "Demo"

// Address is a composite value.
type Address struct {
	_      struct{} `mgmt:"composite,desc='Postal address'"`
	Street string   `mgmt:"item"`
	City   string   `mgmt:"item"`
	Zip    string   `mgmt:"item,name=postalCode"`
}

// Child is registered with its parent and named relative to it.
type Child struct {
	_    struct{} `mgmt:"bean,name='child=#{name}',desc='Child #{name}'"`
	Name string   `mgmt:"attribute"`
	Age  int      `mgmt:"attribute,writable"`
}

// Person is the main management object of the example.
type Person struct {
	_ struct{} `mgmt:"bean,name='Demo:type=Person,name=#{name}',desc='Person #{name}'"`
	_ struct{} `mgmt:"operation,method=Birthday,impact=action,desc='Increase the age by one'"`
	_ struct{} `mgmt:"operation,method=Rename,params=first|last,paramDescs='First name|Last name',impact=action_info"`
	_ struct{} `mgmt:"operation,method=Greet,params=whom,impact=info"`
	_ struct{} `mgmt:"attribute,method=IsAdult"`

	Name     string            `mgmt:"attribute"`
	Age      int               `mgmt:"attribute,writable"`
	Home     Address           `mgmt:"attribute"`
	Tags     map[string]string `mgmt:"attribute;size,name=tagCount"`
	Born     time.Time         `mgmt:"attribute"`
	Website  *url.URL          `mgmt:"attribute,writable"`
	Children []*Child          `mgmt:"size,name=childCount"`
	Eldest   *Child            `mgmt:"reference,concat"`

	Greetings *mvalue.EventCounter     `mgmt:"include"`
	Calls     *mvalue.ExecutionCounter `mgmt:"include"`
}

// NewPerson returns a person with fresh counters.
func NewPerson(name string, age int) *Person {
	return &Person{
		Name:      name,
		Age:       age,
		Tags:      map[string]string{},
		Greetings: mvalue.NewEventCounter("greetings", mvalue.WithDescription("Greetings sent")),
		Calls:     mvalue.NewExecutionCounter("operations"),
	}
}

// AddChild appends a child; the first one becomes the eldest.
func (p *Person) AddChild(c *Child) {
	p.Children = append(p.Children, c)
	if p.Eldest == nil {
		p.Eldest = c
	}
}

// IsAdult reports whether the person is 18 or older.
func (p *Person) IsAdult() bool { return p.Age >= 18 }

// Birthday increases the age by one.
func (p *Person) Birthday() {
	_ = p.Calls.Measure(func() error {
		p.Age++
		return nil
	})
}

// Rename replaces the name and returns it. The identity is not changed.
func (p *Person) Rename(first, last string) string {
	_ = p.Calls.Measure(func() error {
		p.Name = first + " " + last
		return nil
	})
	return p.Name
}

// Greet returns a greeting from p to whom.
func (p *Person) Greet(whom string) (string, error) {
	var out string
	err := p.Calls.Measure(func() error {
		if whom == "" {
			return fmt.Errorf("example: greet: empty name")
		}
		p.Greetings.Increment()
		out = fmt.Sprintf("Hello %s, I am %s", whom, p.Name)
		return nil
	})
	return out, err
}

// Directory holds people by name. People are registered while they are in
// the directory.
type Directory struct {
	people *collections.Map[string, *Person]
}

// NewDirectory returns an empty directory bound to lc.
func NewDirectory(lc collections.Lifecycle) *Directory {
	return &Directory{people: collections.NewMap[string, *Person](lc)}
}

// Add stores p under its name, replacing and unregistering any previous
// person of that name.
func (d *Directory) Add(p *Person) error {
	_, _, err := d.people.Put(p.Name, p)
	return err
}

// Remove drops and unregisters the person called name.
func (d *Directory) Remove(name string) (bool, error) {
	_, ok, err := d.people.Delete(name)
	return ok, err
}

// Get returns the person called name.
func (d *Directory) Get(name string) (*Person, bool) {
	return d.people.Get(name)
}

// Len returns the number of people.
func (d *Directory) Len() int { return d.people.Len() }

// Close removes and unregisters everyone.
func (d *Directory) Close() error { return d.people.Clear() }

// Seed fills d with a fixed set of people.
func Seed(d *Directory) error {
	born := time.Date(1985, time.March, 14, 0, 0, 0, 0, time.UTC)
	site, _ := url.Parse("https://example.org/~ann")

	ann := NewPerson("ann", 40)
	ann.Home = Address{Street: "1 Main St", City: "Springfield", Zip: "12345"}
	ann.Tags["team"] = "ops"
	ann.Tags["shift"] = "day"
	ann.Born = born
	ann.Website = site
	ann.AddChild(&Child{Name: "tom", Age: 12})
	ann.AddChild(&Child{Name: "lia", Age: 9})

	bob := NewPerson("bob", 17)
	bob.Home = Address{Street: "7 Elm St", City: "Shelbyville"}
	bob.Born = born.AddDate(23, 0, 0)

	for _, p := range []*Person{ann, bob} {
		if err := d.Add(p); err != nil {
			return err
		}
	}
	return nil
}
