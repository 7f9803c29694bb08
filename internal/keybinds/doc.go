/*
Package keybinds provides customizable keyboard binding management.

Bindings live in contexts: global, table, filter, edit and inspect. A key
bound in a specific context wins over the same key in global.

User overrides are read from ~/.taxdesk/keybinds.jsonc. Each section maps
a key to an action name, and an empty action removes the default binding:

	{
	  // vim users
	  "table": {
	    "/": "toggle_filter",
	    "f": "",
	  },
	}

The validator rejects configs that rebind ctrl+c or leave an overlay
without a close key.
*/
package keybinds
